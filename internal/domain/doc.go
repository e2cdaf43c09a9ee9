// Package domain models the inputs and outputs of the Fire Weather Index
// (FWI) regression model.
//
// # Feature Schema
//
// The model consumes nine features. Four are surface weather readings and five
// are components of the Canadian Forest Fire Weather Index System:
//
//	Temperature  noon air temperature, °C          [0, 50]
//	RH           relative humidity, %              [0, 100]
//	Ws           wind speed, km/h                  [0, 80]
//	Rain         24h rainfall, mm                  [0, 10]
//	FFMC         Fine Fuel Moisture Code           [0, 100]
//	DMC          Duff Moisture Code                [0, 500]
//	DC           Drought Code                      [0, 1000]
//	ISI          Initial Spread Index              [0, 50]
//	BUI          Buildup Index                     [0, 100]
//
// Ranges are inclusive. [Validate] rejects a payload that is missing any
// feature or carries a value outside its range, reporting every offending
// field at once.
//
// # Feature Order
//
// The fitted scaler and regressor expect their inputs in the order used at
// training time. That order is an artifact loaded at startup (see package
// pipeline), not the order of the table above. [FeatureVector.Ordered]
// arranges values for a given order.
//
// # Live Weather
//
// The weather provider reports wind in m/s. [WeatherPayload.Features]
// converts to km/h (×3.6) before the value is used as Ws.
package domain
