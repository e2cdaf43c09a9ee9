// Command genmodel writes the bundled demonstration artifacts
// (feature_order.json, scaler.json, model.json) that fwi-server loads.
//
// Usage:
//
//	go run ./cmd/genmodel -out artifacts
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/couchcryptid/fire-weather-service/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "artifacts", "directory to write model artifacts into")
	flag.Parse()

	order, sa, ma := pipeline.DemoArtifacts()
	if err := pipeline.WriteArtifacts(*out, order, sa, ma); err != nil {
		return err
	}

	// Round-trip through the loader so a broken artifact never ships.
	p, err := pipeline.Load(*out)
	if err != nil {
		return fmt.Errorf("verify artifacts: %w", err)
	}
	fmt.Printf("wrote %s, %s, %s to %s (features: %v)\n",
		pipeline.FeatureOrderFile, pipeline.ScalerFile, pipeline.ModelFile, *out, p.FeatureOrder())
	return nil
}
