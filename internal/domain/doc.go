// Package domain models the inputs and outputs of the Fire Weather Index (FWI) model.
//
// # Data Source
//
// The model was fit on the Algerian Forest Fires dataset: daily observations from
// two regions (Bejaia in the north-east, Sidi-Bel Abbes in the north-west) between
// June and September 2012. Each observation carries weather readings, components of
// the Canadian Forest Fire Weather Index System, a fire/no-fire class and a region
// flag. The FWI itself is the regression target.
//
// # Features
//
// Request fields and their units, in model order:
//
//	Temperature  noon temperature, °C (dataset range 22–42)
//	RH           relative humidity, % (21–90)
//	Ws           wind speed, km/h (6–29)
//	Rain         total rain for the day, mm (0–16.8)
//	FFMC         Fine Fuel Moisture Code (28.6–92.5)
//	DMC          Duff Moisture Code (1.1–65.9)
//	ISI          Initial Spread Index (0–18.5)
//	Classes      0 = not fire, 1 = fire
//	region       0 = Bejaia, 1 = Sidi-Bel Abbes
//
// Ranges are informational; only finiteness is enforced. The SPA form applies the
// ranges client-side.
//
// Values may arrive as JSON numbers or numeric strings because the browser form
// posts raw input values. Field names are case-sensitive and "region" is lower case
// to match the column name the model was fit with.
//
// # Errors
//
// Failures are tagged: [ValidationError] for bad requests, [ComputationError] for
// valid requests the model cannot answer, [InternalError] for everything else. Only
// the first two carry messages meant for clients; see [PublicMessage].
package domain
