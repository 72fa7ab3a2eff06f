package metrics

import (
	"gonum.org/v1/gonum/integrate"

	"github.com/san-kum/grainsim/internal/propulsion"
)

// TotalImpulse integrates thrust over time with the trapezoidal rule. Thrust
// between ignition and the first snapshot is taken to equal the first
// snapshot.
type TotalImpulse struct {
	name   string
	times  []float64
	thrust []float64
}

func NewTotalImpulse() *TotalImpulse {
	return &TotalImpulse{name: "total_impulse"}
}

func (m *TotalImpulse) Name() string { return m.name }

func (m *TotalImpulse) Observe(s propulsion.State) {
	if len(m.times) == 0 {
		m.times = append(m.times, 0)
		m.thrust = append(m.thrust, s.Thrust)
	}
	if s.Time <= m.times[len(m.times)-1] {
		return
	}
	m.times = append(m.times, s.Time)
	m.thrust = append(m.thrust, s.Thrust)
}

func (m *TotalImpulse) Value() float64 {
	if len(m.times) < 2 {
		return 0
	}
	return integrate.Trapezoidal(m.times, m.thrust)
}

func (m *TotalImpulse) Reset() {
	m.times = m.times[:0]
	m.thrust = m.thrust[:0]
}

// DeliveredIsp is total impulse per unit weight of propellant expelled.
type DeliveredIsp struct {
	name     string
	impulse  *TotalImpulse
	expelled float64
	lastTime float64
}

func NewDeliveredIsp() *DeliveredIsp {
	return &DeliveredIsp{name: "delivered_isp", impulse: NewTotalImpulse()}
}

func (m *DeliveredIsp) Name() string { return m.name }

func (m *DeliveredIsp) Observe(s propulsion.State) {
	m.expelled += s.TotalMassFlow * (s.Time - m.lastTime)
	m.lastTime = s.Time
	m.impulse.Observe(s)
}

func (m *DeliveredIsp) Value() float64 {
	if m.expelled <= 0 {
		return 0
	}
	return m.impulse.Value() / (m.expelled * propulsion.G0)
}

func (m *DeliveredIsp) Reset() {
	m.impulse.Reset()
	m.expelled = 0
	m.lastTime = 0
}
