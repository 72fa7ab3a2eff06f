// Package propulsion derives mass flows and thrust from the port geometry
// and the regression rate of one step.
package propulsion

import "math"

// G0 is standard gravity in m/s².
const G0 = 9.80665

// State is the snapshot recorded after one simulation step.
type State struct {
	Step              int     `json:"step" csv:"step"`
	Time              float64 `json:"time" csv:"time_s"`
	RegressionRate    float64 `json:"regression_rate" csv:"regression_rate_m_s"`
	MassFlux          float64 `json:"mass_flux" csv:"mass_flux_kg_m2_s"`
	BurnPerimeter     float64 `json:"burn_perimeter" csv:"burn_perimeter_m"`
	PortArea          float64 `json:"port_area" csv:"port_area_m2"`
	FuelArea          float64 `json:"fuel_area" csv:"fuel_area_m2"`
	HydraulicDiameter float64 `json:"hydraulic_diameter" csv:"hydraulic_diameter_m"`
	FuelMassFlow      float64 `json:"fuel_mass_flow" csv:"fuel_mass_flow_kg_s"`
	OxidizerMassFlow  float64 `json:"oxidizer_mass_flow" csv:"oxidizer_mass_flow_kg_s"`
	TotalMassFlow     float64 `json:"total_mass_flow" csv:"total_mass_flow_kg_s"`
	OFRatio           float64 `json:"of_ratio" csv:"of_ratio"`
	Thrust            float64 `json:"thrust" csv:"thrust_n"`
	FuelConsumed      float64 `json:"fuel_consumed" csv:"fuel_consumed_kg"`
	RemainingFuelMass float64 `json:"remaining_fuel_mass" csv:"remaining_fuel_mass_kg"`
}

// Inputs carries everything Derive needs for one step. Geometric values
// are in SI units.
type Inputs struct {
	Step              int
	Time              float64
	Dt                float64
	RegressionRate    float64
	MassFlux          float64
	BurnPerimeter     float64
	PortArea          float64
	FuelArea          float64
	HydraulicDiameter float64

	OxidizerFlow float64
	Length       float64
	Density      float64
	Isp          float64

	FuelConsumed      float64 // cumulative, before this step
	RemainingFuelMass float64 // before this step
}

// Derive computes the state of one step. Remaining fuel mass never drops
// below zero and the fuel consumed never exceeds what was available.
func Derive(in Inputs) State {
	fuelFlow := in.RegressionRate * in.BurnPerimeter * in.Length * in.Density
	if fuelFlow < 0 {
		fuelFlow = 0
	}
	total := in.OxidizerFlow + fuelFlow

	of := 0.0
	if fuelFlow > 0 {
		of = in.OxidizerFlow / fuelFlow
	}

	burned := math.Min(fuelFlow*in.Dt, math.Max(in.RemainingFuelMass, 0))
	remaining := math.Max(0, in.RemainingFuelMass-burned)

	return State{
		Step:              in.Step,
		Time:              in.Time,
		RegressionRate:    in.RegressionRate,
		MassFlux:          in.MassFlux,
		BurnPerimeter:     in.BurnPerimeter,
		PortArea:          in.PortArea,
		FuelArea:          in.FuelArea,
		HydraulicDiameter: in.HydraulicDiameter,
		FuelMassFlow:      fuelFlow,
		OxidizerMassFlow:  in.OxidizerFlow,
		TotalMassFlow:     total,
		OFRatio:           of,
		Thrust:            total * in.Isp * G0,
		FuelConsumed:      in.FuelConsumed + burned,
		RemainingFuelMass: remaining,
	}
}
