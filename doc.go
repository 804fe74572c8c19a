// Package incomelens is an exploratory analysis dashboard for the income
// ("previsão de renda") dataset.
//
// Usage:
//
//	import "github.com/spektr-org/incomelens/engine"
//
//	result, err := engine.Execute(engine.Request{Option: engine.OptionBivariate},
//	    table.View(),
//	    engine.WithConfidenceLevel(0.95),
//	)
//
// The dataset package loads the CSV, cleaner winsorizes income and imputes
// missing employment durations, and engine turns a view selection into
// render-ready output (table data or chart configs). render draws chart
// configs as PNG and server exposes everything as an HTML dashboard.
//
// All computation is local; the engine never calls an external service.
package incomelens
