package moments

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/sundaymedia/catholiccuts/internal/transcript"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

// Record is the wire shape of one moment as returned by the model backend.
// Field types are forgiving: timestamps accept numbers, numeric strings, or
// MM:SS.xx strings, so a sloppy model response is repaired instead of
// rejected wholesale.
type Record struct {
	Quote            string                `json:"quote" jsonschema_description:"Exact verbatim quote from the transcript"`
	StartSec         Seconds               `json:"start_sec" jsonschema_description:"Moment start in seconds from transcript start"`
	EndSec           Seconds               `json:"end_sec" jsonschema_description:"Moment end in seconds from transcript start"`
	ViralTrigger     string                `json:"viral_trigger" jsonschema_description:"One of: controversy, humor, insight, conviction, testimony, absurdity"`
	EnergyTag        string                `json:"energy_tag" jsonschema_description:"Delivery energy, e.g. fiery, solemn, playful, measured"`
	WhyItHits        string                `json:"why_it_hits" jsonschema_description:"One sentence on why this moment resonates"`
	Flags            []string              `json:"flags" jsonschema_description:"Content flags such as sensitive or polemical; empty if none"`
	PersonaCaptions  types.PersonaCaptions `json:"persona_captions" jsonschema_description:"Short caption per audience persona"`
	BRollIdeas       string                `json:"b_roll_ideas" jsonschema_description:"Optional b-roll suggestion"`
	TextOnScreenIdea string                `json:"text_on_screen_idea" jsonschema_description:"Optional on-screen text suggestion"`
}

// Seconds is a timestamp in seconds that unmarshals from a JSON number, a
// numeric string, or an MM:SS.xx string. Unusable values decode to
// SecondsInvalid, a negative sentinel that validation rejects, so a garbage
// timestamp is never mistaken for 00:00.
type Seconds float64

// SecondsInvalid marks a timestamp that could not be coerced.
const SecondsInvalid Seconds = -1

// Duration converts to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}

// UnmarshalJSON implements the coercion described on Record.
func (s *Seconds) UnmarshalJSON(b []byte) error {
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		*s = Seconds(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		// Unusable value; let validation drop the record.
		*s = SecondsInvalid
		return nil
	}
	str = strings.TrimSpace(str)
	if str == "" {
		*s = SecondsInvalid
		return nil
	}
	if f, err := strconv.ParseFloat(str, 64); err == nil {
		*s = Seconds(f)
		return nil
	}
	if d, err := transcript.ParseTimestamp(str); err == nil {
		*s = Seconds(d.Seconds())
		return nil
	}
	*s = SecondsInvalid
	return nil
}

// MarshalJSON keeps the wire form numeric.
func (s Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(s))
}

// JSONSchema declares the wire schema as a plain number; the string
// coercions exist only as a decoding repair, not as part of the contract.
func (Seconds) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number"}
}

// Response is the structured-output envelope the backend asks the model to
// fill for one chunk.
type Response struct {
	Moments []Record `json:"moments" jsonschema_description:"Candidate viral moments found in this chunk, best first"`
}
