package tour

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrMalformed is wrapped by every DecodeResult that failed validation.
var ErrMalformed = errors.New("malformed generator response")

// DecodeResult is the tagged outcome of decoding a generator response.
// Exactly one of Tours (non-empty) or Err is set.
type DecodeResult struct {
	Tours []Tour
	Err   error
}

// OK reports whether decoding produced at least one usable tour.
func (r DecodeResult) OK() bool {
	return r.Err == nil && len(r.Tours) > 0
}

func malformed(format string, args ...any) DecodeResult {
	return DecodeResult{Err: fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))}
}

// rawTour mirrors the loosely-typed shape the generator returns.
type rawTour struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    any       `json:"duration"`
	Distance    any       `json:"distance"`
	Difficulty  string    `json:"difficulty"`
	Theme       string    `json:"theme"`
	Stops       []rawStop `json:"stops"`
}

type rawStop struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Hook        string        `json:"hook"`
	Story       string        `json:"story"`
	Secret      string        `json:"secret"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Lat         float64       `json:"lat"`
	Lng         float64       `json:"lng"`
	Type        string        `json:"type"`
	Category    string        `json:"category"`
	PhotoSpot   *rawPhotoSpot `json:"photoSpot"`
}

type rawPhotoSpot struct {
	Angle     string `json:"angle"`
	BestTime  string `json:"bestTime"`
	SnakeTime string `json:"best_time"`
	Caption   string `json:"caption"`
}

func (rp *rawPhotoSpot) build() *PhotoSpot {
	if rp == nil {
		return nil
	}
	spot := &PhotoSpot{
		Angle:    strings.TrimSpace(rp.Angle),
		BestTime: strings.TrimSpace(rp.BestTime),
		Caption:  strings.TrimSpace(rp.Caption),
	}
	if spot.BestTime == "" {
		spot.BestTime = strings.TrimSpace(rp.SnakeTime)
	}
	if *spot == (PhotoSpot{}) {
		return nil
	}
	return spot
}

var fence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// Decode strictly parses a generator response for city. It never panics and
// never returns an error directly; failures are reported in the result.
func Decode(city, raw string) DecodeResult {
	body := strings.TrimSpace(raw)
	if m := fence.FindStringSubmatch(body); m != nil {
		body = m[1]
	}
	if body == "" {
		return malformed("empty response")
	}

	var raws []rawTour
	data := []byte(body)
	switch {
	case bytes.HasPrefix(data, []byte("[")):
		if err := json.Unmarshal(data, &raws); err != nil {
			return malformed("decoding tour array: %v", err)
		}
	case bytes.HasPrefix(data, []byte("{")):
		var wrapped struct {
			Tours []rawTour `json:"tours"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return malformed("decoding tour object: %v", err)
		}
		raws = wrapped.Tours
	default:
		return malformed("response is not JSON")
	}

	tours := make([]Tour, 0, len(raws))
	for _, rt := range raws {
		t := rt.build(city)
		if len(t.Stops) == 0 {
			continue
		}
		tours = append(tours, t)
	}
	if len(tours) == 0 {
		return malformed("no tour with stops among %d entries", len(raws))
	}

	return DecodeResult{Tours: tours}
}

func (rt rawTour) build(city string) Tour {
	t := Tour{
		ID:          uuid.NewString(),
		City:        city,
		Title:       strings.TrimSpace(rt.Title),
		Description: strings.TrimSpace(rt.Description),
		Duration:    looseString(rt.Duration),
		Difficulty:  rt.Difficulty,
		Theme:       rt.Theme,
	}
	if km, ok := rt.Distance.(float64); ok {
		t.DistanceKM = km
	}

	for _, rs := range rt.Stops {
		if strings.TrimSpace(rs.Name) == "" {
			continue
		}
		t.Stops = append(t.Stops, rs.build())
	}
	t.DistanceKM = RouteDistanceKM(t.Stops, t.DistanceKM)
	return t
}

func (rs rawStop) build() Stop {
	desc, sections := SplitSections(rs.Description)
	if rs.Hook != "" || rs.Story != "" || rs.Secret != "" {
		sections = Narrative{Hook: rs.Hook, Story: rs.Story, Secret: rs.Secret}
	}

	lat, lng := rs.Latitude, rs.Longitude
	if lat == 0 && lng == 0 {
		lat, lng = rs.Lat, rs.Lng
	}

	category := rs.Category
	if category == "" {
		category = rs.Type
	}

	return Stop{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(rs.Name),
		Description: desc,
		Narrative:   sections,
		Latitude:    lat,
		Longitude:   lng,
		Category:    CoerceCategory(category),
		PhotoSpot:   rs.PhotoSpot.build(),
	}
}

func looseString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g min", x)
	default:
		return ""
	}
}

var sectionMarker = regexp.MustCompile(`(?i)\[(hook|story|secret)\]`)

// SplitSections extracts [HOOK]/[STORY]/[SECRET] sections from a stop
// description. Text before the first marker is returned as the plain
// description.
func SplitSections(text string) (string, Narrative) {
	locs := sectionMarker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(text), Narrative{}
	}

	var n Narrative
	plain := strings.TrimSpace(text[:locs[0][0]])
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		switch strings.ToLower(text[loc[2]:loc[3]]) {
		case "hook":
			n.Hook = body
		case "story":
			n.Story = body
		case "secret":
			n.Secret = body
		}
	}
	return plain, n
}
