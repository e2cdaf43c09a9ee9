package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/session"
)

var helpText = `commands:
  set <feature> <value>   change one input (` + strings.Join(domain.FeatureNames(), " ") + `)
  scenario <name>         load one of ` + strings.Join(session.ScenarioNames(), ", ") + `
  predict                 predict from the current inputs
  auto on|off             predict from the current inputs on every tick
  click <lat> <lon>       select a map coordinate
  weather                 show live weather and its FWI at the selected coordinate
  status                  show inputs and session counters
  history                 show the last recorded predictions
  help                    show this text
  quit                    leave`

type console struct {
	mgr        *session.Manager
	out        io.Writer
	serviceURL string
}

func printUnavailable(w io.Writer, url string) {
	fmt.Fprintf(w, "prediction service not reachable at %s\n", url)
	fmt.Fprintln(w, "start it with: go run ./cmd/fwi-server")
}

func (c *console) banner() {
	fmt.Fprintf(c.out, "FWI console, connected to %s\n", c.serviceURL)
	fmt.Fprintln(c.out, "type 'help' for commands")
}

func (c *console) prompt() {
	fmt.Fprint(c.out, "fwi> ")
}

// exec runs one command line. It reports whether the console should exit.
func (c *console) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(c.out, helpText)
	case "set":
		return false, c.set(args)
	case "scenario":
		if len(args) != 1 {
			return false, errors.New("usage: scenario <name>")
		}
		if err := c.mgr.ApplyScenario(args[0]); err != nil {
			return false, err
		}
		c.printInputs(c.mgr.Snapshot().Inputs)
	case "predict":
		res, err := c.mgr.Predict(ctx)
		if err != nil {
			return false, err
		}
		c.printResult(res)
	case "auto":
		return false, c.auto(args)
	case "click":
		return false, c.click(args)
	case "weather":
		return false, c.weather(ctx)
	case "status":
		c.printStatus()
	case "history":
		c.printHistory()
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return false, nil
}

func (c *console) set(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set <feature> <value>")
	}
	r, ok := domain.FindFeature(args[0])
	if !ok {
		return fmt.Errorf("unknown feature %q", args[0])
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q", args[1])
	}
	if !r.Contains(v) {
		return fmt.Errorf("%s must be within [%g, %g]", r.Name, r.Min, r.Max)
	}
	return c.mgr.SetFeature(r.Name, v)
}

func (c *console) auto(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: auto on|off")
	}
	switch strings.ToLower(args[0]) {
	case "on":
		c.mgr.SetAutoPredict(true)
	case "off":
		c.mgr.SetAutoPredict(false)
	default:
		return errors.New("usage: auto on|off")
	}
	fmt.Fprintf(c.out, "auto-predict %s\n", strings.ToLower(args[0]))
	return nil
}

func (c *console) click(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: click <lat> <lon>")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[1])
	}
	if err := c.mgr.SetCoordinate(lat, lon); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "selected %.4f, %.4f\n", lat, lon)
	return nil
}

func (c *console) weather(ctx context.Context) error {
	w, res, err := c.mgr.LiveWeatherPredict(ctx)
	if errors.Is(err, session.ErrNoWeather) {
		fmt.Fprintln(c.out, "live weather unavailable for this location")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "temperature %s  humidity %s  wind %s  precipitation %s\n",
		reading(w.Temperature, "°C"), reading(w.RelativeHumidity, "%"),
		reading(w.WindSpeed, "m/s"), reading(w.Precipitation, "mm"))
	if !res.OK() {
		fmt.Fprintf(c.out, "prediction failed: %s\n", res.Message)
		return nil
	}
	fmt.Fprintf(c.out, "live FWI %.2f\n", res.Value)
	return nil
}

func reading(p *float64, unit string) string {
	if p == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*p, 'f', 1, 64) + " " + unit
}

func (c *console) printResult(res domain.PredictionResult) {
	if !res.OK() {
		fmt.Fprintf(c.out, "prediction failed: %s\n", res.Message)
		return
	}
	st := c.mgr.Snapshot()
	fmt.Fprintf(c.out, "FWI %.2f  (predictions %d, peak %.2f)\n", res.Value, st.PredictionsMade, st.PeakFWI)
}

// printAuto reports a result produced by the auto-predict loop.
func (c *console) printAuto(res domain.PredictionResult) {
	fmt.Fprint(c.out, "\n[auto] ")
	c.printResult(res)
	c.prompt()
}

func (c *console) printInputs(v domain.FeatureVector) {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, r := range domain.Schema() {
		val, _ := v.Get(r.Name)
		fmt.Fprintf(tw, "  %s\t%g\t%s\n", r.Name, val, r.Unit)
	}
	_ = tw.Flush()
}

func (c *console) printStatus() {
	st := c.mgr.Snapshot()
	c.printInputs(st.Inputs)
	fmt.Fprintf(c.out, "coordinate   %.4f, %.4f\n", st.LastCoordinate.Lat, st.LastCoordinate.Lon)
	fmt.Fprintf(c.out, "auto-predict %t\n", st.AutoPredict)
	fmt.Fprintf(c.out, "predictions  %d\n", st.PredictionsMade)
	fmt.Fprintf(c.out, "peak FWI     %.2f\n", st.PeakFWI)
	switch st.LastOutcome {
	case session.PhaseRecorded:
		fmt.Fprintf(c.out, "last         FWI %.2f\n", st.LastFWI)
	case session.PhaseFailed:
		fmt.Fprintf(c.out, "last         failed: %s\n", st.LastError)
	}
}

func (c *console) printHistory() {
	st := c.mgr.Snapshot()
	if len(st.History) == 0 {
		fmt.Fprintln(c.out, "no predictions yet")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "time\tFWI\ttemperature")
	for _, h := range st.History {
		fmt.Fprintf(tw, "%s\t%.2f\t%.1f\n", h.Timestamp.Format("15:04:05"), h.FWI, h.Temperature)
	}
	_ = tw.Flush()
}
