package neows

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/neowatch/neowatch/internal/physics"
)

// neoRecord is the raw NeoWs asteroid document. Orbital quantities arrive
// as strings: semi-major axis in AU, angles in degrees, epoch as a Julian
// Date.
type neoRecord struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Hazardous         bool   `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter struct {
		Meters struct {
			Min float64 `json:"estimated_diameter_min"`
			Max float64 `json:"estimated_diameter_max"`
		} `json:"meters"`
	} `json:"estimated_diameter"`
	OrbitalData *struct {
		SemiMajorAxis string `json:"semi_major_axis"`
		Eccentricity  string `json:"eccentricity"`
		Inclination   string `json:"inclination"`
		AscendingNode string `json:"ascending_node_longitude"`
		ArgPerihelion string `json:"perihelion_argument"`
		MeanAnomaly   string `json:"mean_anomaly"`
		Epoch         string `json:"epoch_osculation"`
	} `json:"orbital_data"`
}

// Asteroid is a parsed NeoWs record in core units: meters, radians, JD.
type Asteroid struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Diameter  float64                 `json:"diameter"` // meters, min/max average
	Hazardous bool                    `json:"hazardous"`
	Elements  physics.OrbitalElements `json:"elements"`
	EpochUTC  time.Time               `json:"epoch_utc"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// parseRecord converts one raw record into core units. Records missing
// orbital data, or with any unparseable numeric field, are rejected.
func parseRecord(rec neoRecord) (Asteroid, error) {
	if rec.ID == "" {
		return Asteroid{}, fmt.Errorf("missing id")
	}
	if rec.OrbitalData == nil {
		return Asteroid{}, fmt.Errorf("missing orbital data")
	}

	smaAU, err := parseField("semi_major_axis", rec.OrbitalData.SemiMajorAxis)
	if err != nil {
		return Asteroid{}, err
	}
	ecc, err := parseField("eccentricity", rec.OrbitalData.Eccentricity)
	if err != nil {
		return Asteroid{}, err
	}
	if ecc < 0 || ecc >= 1 {
		return Asteroid{}, fmt.Errorf("eccentricity %v outside [0,1)", ecc)
	}
	inc, err := parseField("inclination", rec.OrbitalData.Inclination)
	if err != nil {
		return Asteroid{}, err
	}
	node, err := parseField("ascending_node_longitude", rec.OrbitalData.AscendingNode)
	if err != nil {
		return Asteroid{}, err
	}
	argp, err := parseField("perihelion_argument", rec.OrbitalData.ArgPerihelion)
	if err != nil {
		return Asteroid{}, err
	}
	ma, err := parseField("mean_anomaly", rec.OrbitalData.MeanAnomaly)
	if err != nil {
		return Asteroid{}, err
	}
	epoch, err := parseField("epoch_osculation", rec.OrbitalData.Epoch)
	if err != nil {
		return Asteroid{}, err
	}

	deg := math.Pi / 180
	return Asteroid{
		ID:        rec.ID,
		Name:      rec.Name,
		Diameter:  (rec.EstimatedDiameter.Meters.Min + rec.EstimatedDiameter.Meters.Max) / 2,
		Hazardous: rec.Hazardous,
		Elements: physics.OrbitalElements{
			SemiMajorAxis: smaAU * physics.AU,
			Eccentricity:  ecc,
			Inclination:   inc * deg,
			AscendingNode: node * deg,
			ArgPerihelion: argp * deg,
			MeanAnomaly:   ma * deg,
			Epoch:         epoch,
		},
		EpochUTC: julian.JDToTime(epoch),
	}, nil
}

func parseField(name, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, value, err)
	}
	return f, nil
}
