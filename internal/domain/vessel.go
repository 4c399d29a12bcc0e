package domain

import "math"

// FuelType enumerates the vessel fuels this model knows the carbon
// intensity of.
type FuelType string

const (
	FuelHFO       FuelType = "HFO"
	FuelLFO       FuelType = "LFO"
	FuelMGO       FuelType = "MGO"
	FuelMDO       FuelType = "MDO"
	FuelLNG       FuelType = "LNG"
	FuelMethanol  FuelType = "Methanol"
)

// carbonFactors maps a fuel type to its CF (tonnes CO2 per tonne of fuel
// burned), per the IMO/MEPC reference table.
var carbonFactors = map[FuelType]float64{
	FuelHFO:      3.114,
	FuelLFO:      3.151,
	FuelMGO:      3.206,
	FuelMDO:      3.206,
	FuelLNG:      2.750,
	FuelMethanol: 1.375,
}

// CarbonFactor returns CF(fuelType), or false if the fuel type is unknown.
func CarbonFactor(f FuelType) (float64, bool) {
	cf, ok := carbonFactors[f]
	return cf, ok
}

// Vessel is an immutable digital twin of a ship, supplied per routing
// call.
type Vessel struct {
	Name                string
	Type                string
	DWT                 float64 // tonnes
	Length              float64 // m
	Beam                float64 // m
	Draft               float64 // m
	ServiceSpeed        float64 // knots
	MaxSpeed            float64 // knots, 0 if unspecified
	FuelType            FuelType
	FuelConsumptionRate float64 // t/day at service speed
	EnginePower         float64 // kW
}

// Validate checks the invariants listed in the data model: all fields
// positive, draft <= length, serviceSpeed <= maxSpeed when maxSpeed is
// given, and a known fuel type.
func (v Vessel) Validate() error {
	type posField struct {
		name string
		val  float64
	}
	for _, f := range []posField{
		{"dwt", v.DWT},
		{"length", v.Length},
		{"beam", v.Beam},
		{"draft", v.Draft},
		{"serviceSpeed", v.ServiceSpeed},
		{"fuelConsumptionRate", v.FuelConsumptionRate},
		{"enginePower", v.EnginePower},
	} {
		if f.val <= 0 {
			return NewInputError(f.name, "must be positive")
		}
	}
	if v.Draft > v.Length {
		return NewInputError("draft", "must not exceed length")
	}
	if v.MaxSpeed > 0 && v.ServiceSpeed > v.MaxSpeed {
		return NewInputError("serviceSpeed", "must not exceed maxSpeed")
	}
	if _, ok := CarbonFactor(v.FuelType); !ok {
		return NewInputError("fuelType", "unknown fuel type "+string(v.FuelType))
	}
	return nil
}

// WeatherSample is the atmospheric/marine state at a point and time, used
// to adjust a segment's effective resistance and speed.
type WeatherSample struct {
	Lat               float64
	Lon               float64
	TimestampUnix     int64
	WindSpeedMS       float64
	WindDirectionDeg  float64
	WaveHeightM       float64
	WavePeriodS       float64
	WaveDirectionDeg  float64
	CurrentSpeedMS    float64
	CurrentDirDeg     float64
	SeaTempC          float64
	AirTempC          float64
	PressureHPa       float64
	Source            string
}

// NeutralWeather is the documented fallback sample used whenever weather
// lookups fail: fixed, moderate conditions (light wind, low waves, a weak
// current) so optimization stays deterministic. It is not zero forcing;
// passing it to ComputeSegmentCost still adjusts the cost.
func NeutralWeather() WeatherSample {
	return WeatherSample{
		WindSpeedMS:    5,
		WaveHeightM:    0.5,
		WavePeriodS:    5,
		CurrentSpeedMS: 0.3,
		SeaTempC:       18,
		AirTempC:       18,
		PressureHPa:    1013,
		Source:         "fallback",
	}
}

// SegmentCost is the derived cost of traversing one segment: never stored
// beyond the routing call that produced it.
type SegmentCost struct {
	FuelConsumedT  float64
	CO2EmittedT    float64
	DurationH      float64
	EffectiveSpeed float64 // knots
}

const knotsPerMS = 1.943844

// windResistancePct estimates the percentage resistance increase caused by
// headwind, using a frontal-area × relative-wind-speed² force scaled
// against a simplified Holtrop-style baseline resistance built from hull
// length, draft, and Froude number. This is a documented simplification,
// not a full Holtrop-Mennen regression: it exists to give wind a
// physically plausible, monotonic effect on fuel burn, not an exact
// resistance figure.
func windResistancePct(v Vessel, speedKn float64, windSpeedMS, windDirDeg, headingDeg float64) float64 {
	shipSpeedMS := speedKn / knotsPerMS
	relAngle := deg2rad(windDirDeg - headingDeg)
	// Headwind component of the apparent wind (ship's own motion adds to a
	// wind blowing from ahead).
	relWindSpeed := windSpeedMS*math.Cos(relAngle) + shipSpeedMS
	if relWindSpeed < 0 {
		relWindSpeed = 0
	}

	const airDensity = 1.225 // kg/m^3
	frontalArea := v.Beam * (v.Draft * 0.35)
	windForce := 0.5 * airDensity * frontalArea * relWindSpeed * relWindSpeed

	const g = 9.80665
	const seaWaterDensity = 1025.0 // kg/m^3
	froude := shipSpeedMS / math.Sqrt(g*v.Length)
	baselineResistance := 0.5 * seaWaterDensity * v.Length * v.Draft * froude * froude
	if baselineResistance < 1 {
		baselineResistance = 1
	}

	return clamp(windForce/baselineResistance*100, 0, 50)
}

// waveResistancePct estimates the percentage resistance increase from
// waves: wave height squared, attenuated by how head-on the waves are.
func waveResistancePct(waveHeightM, waveDirDeg, headingDeg float64) float64 {
	pct := waveHeightM * waveHeightM * math.Abs(math.Cos(deg2rad(waveDirDeg-headingDeg))) * 2
	return clamp(pct, 0, 50)
}

// currentEffectPct is the percentage speed assist (positive) or penalty
// (negative) from an ocean current resolved along the ship's heading.
func currentEffectPct(currentSpeedMS, currentDirDeg, headingDeg, speedKn float64) float64 {
	if speedKn <= 0 {
		return 0
	}
	alongTrack := currentSpeedMS * math.Cos(deg2rad(currentDirDeg-headingDeg)) * knotsPerMS
	return clamp(alongTrack/speedKn*100, -50, 50)
}

// ComputeSegmentCost derives fuel, CO2, duration, and effective speed for
// one segment of the given distance at the given target speed and
// heading. weather may be nil, which applies no weather adjustment at all
// (weatherFactor=1, no speed loss or gain) — used when weather-aware
// routing is disabled. This differs from passing NeutralWeather, whose
// wind, wave and current values do change the cost.
func ComputeSegmentCost(v Vessel, distanceNM, targetSpeedKn, headingDeg float64, weather *WeatherSample) SegmentCost {
	if targetSpeedKn <= 0 {
		targetSpeedKn = v.ServiceSpeed
	}

	baseFuelRate := v.FuelConsumptionRate / 24.0
	speedFactor := math.Pow(targetSpeedKn/v.ServiceSpeed, 3)

	var weatherFactor = 1.0
	var speedLoss, currentEffectFrac float64

	if weather != nil {
		windPct := windResistancePct(v, targetSpeedKn, weather.WindSpeedMS, weather.WindDirectionDeg, headingDeg)
		wavePct := waveResistancePct(weather.WaveHeightM, weather.WaveDirectionDeg, headingDeg)
		currentPct := currentEffectPct(weather.CurrentSpeedMS, weather.CurrentDirDeg, headingDeg, targetSpeedKn)

		weatherFactor = clamp(1+(windPct+wavePct-currentPct)/100, 0.5, 2.0)

		maxLoss := 0.3 * v.ServiceSpeed
		speedLoss = clamp(0.5*weather.WaveHeightM+0.03*weather.WindSpeedMS, 0, maxLoss)
		currentEffectFrac = currentPct / 100
	}

	fuelRate := baseFuelRate * speedFactor * weatherFactor

	effectiveSpeed := targetSpeedKn - speedLoss + currentEffectFrac*targetSpeedKn
	if effectiveSpeed < 1 {
		effectiveSpeed = 1
	}

	durationH := distanceNM / effectiveSpeed
	fuelConsumed := fuelRate * durationH
	cf, _ := CarbonFactor(v.FuelType)
	co2 := fuelConsumed * cf

	return SegmentCost{
		FuelConsumedT:  fuelConsumed,
		CO2EmittedT:    co2,
		DurationH:      durationH,
		EffectiveSpeed: effectiveSpeed,
	}
}

// CIIRating is the simplified letter grade derived from a voyage's carbon
// intensity indicator.
type CIIRating string

const (
	CIIRatingA CIIRating = "A"
	CIIRatingB CIIRating = "B"
	CIIRatingC CIIRating = "C"
	CIIRatingD CIIRating = "D"
	CIIRatingE CIIRating = "E"
)

// ComputeCII returns the carbon intensity indicator (gCO2 per tonne-mile)
// and its simplified letter rating. totalCO2T is in tonnes, totalDistanceNM
// in nautical miles, dwt in tonnes.
func ComputeCII(totalCO2T, totalDistanceNM, dwt float64) (float64, CIIRating) {
	if dwt <= 0 || totalDistanceNM <= 0 {
		return 0, CIIRatingE
	}
	cii := totalCO2T * 1e6 / (dwt * totalDistanceNM)
	switch {
	case cii <= 3.0:
		return cii, CIIRatingA
	case cii <= 4.0:
		return cii, CIIRatingB
	case cii <= 5.0:
		return cii, CIIRatingC
	case cii <= 6.0:
		return cii, CIIRatingD
	default:
		return cii, CIIRatingE
	}
}
