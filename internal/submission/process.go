package submission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
)

// Label is the tracker label of a suggestion kind
type Label string

const (
	LabelCodes        Label = "codes"
	LabelCharacter    Label = "character"
	LabelWyrmspell    Label = "wyrmspell"
	LabelStatusEffect Label = "status-effect"
	LabelLinks        Label = "links"
	LabelTierList     Label = "tier-list"
	LabelTeam         Label = "team"
)

var titlePrefixes = []struct {
	prefix string
	label  Label
}{
	{"[Code]", LabelCodes},
	{"[Character]", LabelCharacter},
	{"[Wyrmspell]", LabelWyrmspell},
	{"[Status Effect]", LabelStatusEffect},
	{"[Link]", LabelLinks},
	{"[Tier List]", LabelTierList},
	{"[Team]", LabelTeam},
}

// DataFiles maps each label to the data file its suggestions land in
var DataFiles = map[Label]string{
	LabelCodes:        "codes.json",
	LabelWyrmspell:    "wyrmspells.json",
	LabelStatusEffect: "status-effects.json",
	LabelLinks:        "useful-links.json",
	LabelCharacter:    "characters.json",
	LabelTierList:     "tier-lists.json",
	LabelTeam:         "teams.json",
}

var requiredFields = map[Label][]string{
	LabelCodes:        {"code"},
	LabelWyrmspell:    {"name"},
	LabelStatusEffect: {"name"},
	LabelLinks:        {"name", "link"},
	LabelCharacter:    {"name"},
	LabelTierList:     {"name", "entries"},
	LabelTeam:         {"name", "members"},
}

var jsonBlock = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```")

// LabelForTitle detects the suggestion kind from an issue title prefix
func LabelForTitle(title string) (Label, bool) {
	for _, p := range titlePrefixes {
		if strings.HasPrefix(title, p.prefix) {
			return p.label, true
		}
	}
	return "", false
}

// ExtractJSON decodes the first fenced json block of an issue body
func ExtractJSON(body string) (map[string]any, error) {
	m := jsonBlock.FindStringSubmatch(body)
	if m == nil {
		return nil, errors.InvalidArgument("no ```json code block found in the issue body")
	}
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(m[1])))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid JSON in issue body")
	}
	if data == nil {
		return nil, errors.InvalidArgument("issue JSON must be an object")
	}
	return data, nil
}

// truthy mirrors loose emptiness: nil, "", false, 0 and empty collections are empty
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// Validate checks that the required fields of label are present and non-empty
func Validate(label Label, data map[string]any) error {
	required, ok := requiredFields[label]
	if !ok {
		return errors.InvalidArgumentf("unknown label %q", label)
	}
	var missing []string
	for _, field := range required {
		if !truthy(data[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return errors.InvalidArgumentf("missing required fields for %q: %s", label, strings.Join(missing, ", "))
	}

	switch label {
	case LabelTierList:
		return validateItems(data["entries"], "Tier list must have at least one entry", "Entry", "character_name", "tier")
	case LabelTeam:
		return validateItems(data["members"], "Team must have at least one member", "Member", "character_name")
	}
	return nil
}

func validateItems(v any, empty, noun string, fields ...string) error {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return errors.InvalidArgument(empty)
	}
	for i, item := range items {
		obj, _ := item.(map[string]any)
		for _, field := range fields {
			if !truthy(obj[field]) {
				return errors.InvalidArgumentf("%s %d is missing %q", noun, i, field)
			}
		}
	}
	return nil
}

// Result describes a processed suggestion
type Result struct {
	Label    Label
	JSONFile string
	Total    int
}

// Process validates a suggestion of kind label and appends it to the
// matching data file in dataDir
func Process(dataDir string, label Label, data map[string]any) (Result, error) {
	if err := Validate(label, data); err != nil {
		return Result{}, err
	}
	entry, err := Normalize(label, data)
	if err != nil {
		return Result{}, err
	}
	file := DataFiles[label]
	total, err := AppendToDataFile(filepath.Join(dataDir, file), entry)
	if err != nil {
		return Result{}, err
	}
	return Result{Label: label, JSONFile: file, Total: total}, nil
}

// AppendToDataFile appends entry to the JSON array stored at path and
// rewrites it with two-space indentation and a trailing newline. Existing
// entries keep their key order. It returns the new entry count.
func AppendToDataFile(path string, entry any) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NotFoundf("data file not found: %s", path)
		}
		return 0, errors.Wrapf(err, "failed to read %s", path)
	}
	var existing []json.RawMessage
	if err := json.Unmarshal(data, &existing); err != nil {
		return 0, errors.WrapWithCode(err, errors.CodeFailedPrecondition, "data file is not a JSON array: "+path)
	}

	raw, err := encode(entry)
	if err != nil {
		return 0, err
	}
	existing = append(existing, raw)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(existing); err != nil {
		return 0, errors.Wrap(err, "failed to encode data file")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, errors.Wrapf(err, "failed to write %s", path)
	}
	return len(existing), nil
}

func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "failed to encode entry")
	}
	return json.RawMessage(bytes.TrimSpace(buf.Bytes())), nil
}

// WriteOutputs appends name=value lines to a step output file. An empty
// path is a no-op.
func WriteOutputs(path string, outputs [][2]string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	for _, kv := range outputs {
		if _, err := fmt.Fprintf(f, "%s=%s\n", kv[0], kv[1]); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	return nil
}

// Event is the part of an issue webhook payload the processor reads
type Event struct {
	Issue struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	} `json:"issue"`
}

// ReadEvent loads an issue event payload from path
func ReadEvent(path string) (Event, error) {
	var ev Event
	data, err := os.ReadFile(path)
	if err != nil {
		return ev, errors.Wrapf(err, "failed to read event %s", path)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid event payload")
	}
	return ev, nil
}
