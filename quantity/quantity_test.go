package quantity

import (
	"math"
	"testing"
)

func TestLength_Conversions(t *testing.T) {
	l := Kilo(149597870.700)
	if math.Abs(l.AU()-1.0) > 1e-12 {
		t.Errorf("1 AU in AU: got %.15f", l.AU())
	}
	if math.Abs(l.Km()-149597870.700) > 1e-6 {
		t.Errorf("1 AU in km: got %f", l.Km())
	}
	if Metre(1000).Km() != 1 {
		t.Errorf("1000 m in km: got %f", Metre(1000).Km())
	}
}

func TestAngle_Conversions(t *testing.T) {
	a := Degree(180)
	if math.Abs(a.Radians()-math.Pi) > 1e-15 {
		t.Errorf("180° in radians: got %f, want π", a.Radians())
	}
	if math.Abs(a.Degrees()-180) > 1e-12 {
		t.Errorf("180° in degrees: got %f", a.Degrees())
	}
}

func TestAngle_Mod2Pi(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{2 * math.Pi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, c := range cases {
		if got := Radian(c.in).Mod2Pi().Radians(); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Mod2Pi(%f): got %f, want %f", c.in, got, c.want)
		}
	}
}

func TestTime_Conversions(t *testing.T) {
	d := Day(1)
	if d.Seconds() != 86400 {
		t.Errorf("1 day in seconds: got %f", d.Seconds())
	}
	if Second(43200).Days() != 0.5 {
		t.Errorf("43200 s in days: got %f", Second(43200).Days())
	}
}

func TestSpeed_Builders(t *testing.T) {
	if KilometresPerSecond(1).MetresPerSecond() != 1000 {
		t.Errorf("1 km/s: got %f m/s", KilometresPerSecond(1).MetresPerSecond())
	}
	if MetresPerSecond(3).KmPerSecond() != 0.003 {
		t.Errorf("3 m/s: got %f km/s", MetresPerSecond(3).KmPerSecond())
	}
}

func TestGravitationalParameter_Builders(t *testing.T) {
	// Earth's μ, as HORIZONS publishes it.
	mu := Km3PerS2(398600.440)
	if mu.Value() != 398600.440e9 {
		t.Errorf("Earth μ in SI: got %g", mu.Value())
	}

	// μ from mass: G·M.
	ganymede := MuFromMass(Kilogram(1482e20))
	if got := ganymede.Value(); got != GravitationalConstant*1482e20 {
		t.Errorf("Ganymede μ: got %g", got)
	}
}

func TestMeanMotion_Identities(t *testing.T) {
	// n = √(μ/a³); T = 2π/n. For μ = 1, a = 1: n = 1, T = 2π.
	mu := GravitationalParameter(1)
	a := Metre(1)
	n := mu.DividedByLength3(a.Pow3()).Sqrt()
	if n.RadiansPerSecond() != 1 {
		t.Errorf("n: got %f, want 1", n.RadiansPerSecond())
	}
	if math.Abs(n.Period().Seconds()-2*math.Pi) > 1e-15 {
		t.Errorf("T: got %f, want 2π", n.Period().Seconds())
	}
	if n.Mul(Second(math.Pi)).Radians() != math.Pi {
		t.Errorf("n·t: got %f, want π", n.Mul(Second(math.Pi)).Radians())
	}
}

func TestArea_Sqrt(t *testing.T) {
	if Metre(3).Pow2().Sqrt().Metres() != 3 {
		t.Errorf("√(3²): got %f", Metre(3).Pow2().Sqrt().Metres())
	}
}

func TestVisVivaShapes(t *testing.T) {
	// ε = v²/2 − μ/r for a circular orbit equals −μ/(2r).
	mu := Km3PerS2(398600.440)
	r := Kilo(7000)
	v := Speed(math.Sqrt(mu.Value() / r.Metres()))
	eps := SpecificEnergy(v.Pow2().Value()/2).Sub(mu.Over(r))
	want := -mu.Value() / (2 * r.Metres())
	if math.Abs(eps.Value()-want) > math.Abs(want)*1e-15 {
		t.Errorf("ε: got %g, want %g", eps.Value(), want)
	}
}
