package domain

// RawStop is one step of an optimized route as reported by the optimizer.
//
// Arrival, Distance and Duration are pointers so that a step missing one of
// them can be told apart from a legitimate zero. Distance and Duration are
// cumulative from the route start.
type RawStop struct {
	LocationRef string
	IsStart     bool
	Arrival     *int64
	Service     int64
	Distance    *int64
	Duration    *int64
	Location    *Coordinates
}

// ItineraryStop is a RawStop enriched with derived timing and catalog fields.
type ItineraryStop struct {
	LocationRef string
	IsStart     bool
	Arrival     int64
	Departure   int64
	Service     int64

	DistanceMeters  int64
	DurationSeconds int64

	DistanceToPrevious int64
	DurationToPrevious int64

	Name        string
	MapURL      string
	Coordinates *Coordinates
}

// Totals are the user-facing aggregate metrics of an itinerary.
type Totals struct {
	StopCount           int
	TotalDistanceMeters int64
	TotalMinutes        float64
}

func (t Totals) TotalHours() float64 { return t.TotalMinutes / 60 }

func (t Totals) TotalKilometers() float64 { return float64(t.TotalDistanceMeters) / 1000 }

// Represents the ordered visit plan produced from one optimizer result.
// Stops keeps the optimizer's order; unresolved stops are listed separately.
// An Itinerary is never mutated after it is built.
type Itinerary struct {
	Stops      []ItineraryStop
	Unresolved []UnresolvedLocationWarning
	Partial    bool
	Totals     Totals
}

func (it *Itinerary) UnresolvedCount() int { return len(it.Unresolved) }
