package physics

// Physical constants (SI unless noted).
const (
	GravitationalG = 6.674e-11      // N⋅m²/kg²
	AU             = 1.495978707e11 // meters
	SpeedOfLight   = 2.998e8        // m/s

	SunMass       = 1.989e30 // kg
	SunRadius     = 6.96e8   // meters
	SunLuminosity = 3.828e26 // watts
	SunMu         = GravitationalG * SunMass

	EarthMass   = 5.972e24       // kg
	EarthRadius = 6.371e6        // meters
	EarthMu     = 3.986004418e14 // m³/s²
	J2Earth     = 1.08263e-3     // second zonal harmonic

	MoonMass     = 7.342e22 // kg
	MoonRadius   = 1.7374e6 // meters
	MoonDistance = 3.844e8  // meters, geocentric
	MoonSpeed    = 1022.0   // m/s, circular geocentric
	MoonPeriod   = 27.3     // days

	JupiterMass = 1.898e27
	MarsMass    = 6.417e23

	J2000Epoch    = 2451545.0 // Julian Date of J2000.0
	YearDays      = 365.25
	SecondsPerDay = 86400.0

	StefanBoltzmann   = 5.670374419e-8 // W/m²K⁴
	SolarFluxPressure = 4.56e-6        // N/m² at 1 AU
)
