// Package domain models the flight records used to train delay regressors
// and the pure transforms applied to them before fitting.
//
// # Data Source
//
// Records are one row per scheduled domestic flight, joined upstream with
// departure/arrival airport metadata and daily weather observations. The
// pipeline reads them as CSV (or XLSX) from object storage.
//
// # Column Conventions
//
// Cancellation:
//
//	"Cancelled" is a boolean marker. Accepted spellings are true/false, t/f,
//	and 1/0, case-insensitive, so the legacy "False"/"True" strings parse.
//	Anything else is a ParseError rather than being silently kept or dropped.
//
// Departure time block:
//
//	"DepTimeBlk" is "HHMM-HHMM", e.g. "0600-0659". The derived "dep_time"
//	feature is the hour taken from the first two characters (0-23).
//
// Categorical columns:
//
//	"Airline"   carrier name, e.g. "Delta Air Lines Inc."
//	"dept-type" departure airport size, e.g. "large_airport"
//	"arr-type"  arrival airport size, same domain as dept-type
//
// # One-Hot Encoding
//
// Each categorical column expands into one 0/1 indicator column per category
// in a [Vocabulary]. Airline indicators take the bare category name; airport
// type indicators are named "<column>_ohe_<value>", e.g.
// "dept-type_ohe_large_airport". Values are used verbatim.
//
// The vocabulary is derived once from the training rows, sorted, versioned,
// and persisted with every model. Inference encodes through the persisted
// vocabulary, so a model always sees the exact columns it was trained on.
package domain
