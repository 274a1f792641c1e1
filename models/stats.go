package models

// PlayerStats is the derived per-employee scorecard. It is recomputed from the
// raw collections on every query and never stored; it has no identity and no
// table. All values are integers; only the fields with an explicit cap or
// floor in the formulas are guaranteed to stay within 0-100, so consumers must
// tolerate out-of-range values when the configured weights do not sum to 1.
type PlayerStats struct {
	EmployeeID   string `json:"employee_id"`
	Velocity     int    `json:"velocity"`
	Productivity int    `json:"productivity"`
	Resolution   int    `json:"resolution"`
	Compliance   int    `json:"compliance"`
	Performance  int    `json:"performance"`
	GlobalScore  int    `json:"global_score"`
}
