package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NumQuestions is the fixed size of the questionnaire.
const NumQuestions = 20

// Answers holds one free-text answer per questionnaire slot. Index 0 is q1.
// The array size keeps every record at exactly the 20 canonical keys.
type Answers [NumQuestions]string

// Key returns the canonical key ("q1".."q20") for slot i.
func Key(i int) string {
	return "q" + strconv.Itoa(i+1)
}

// Keys returns the canonical keys in slot order.
func Keys() []string {
	keys := make([]string, NumQuestions)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// Index maps a canonical key to its slot. ok is false for anything else.
func Index(key string) (int, bool) {
	if !strings.HasPrefix(key, "q") {
		return 0, false
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil || n < 1 || n > NumQuestions || Key(n-1) != key {
		return 0, false
	}
	return n - 1, true
}

// Get returns the answer stored under key, or "" for an unknown key.
func (a Answers) Get(key string) string {
	if i, ok := Index(key); ok {
		return a[i]
	}
	return ""
}

// Set stores v under key.
func (a *Answers) Set(key, v string) error {
	i, ok := Index(key)
	if !ok {
		return fmt.Errorf("unknown answer key %q", key)
	}
	a[i] = v
	return nil
}

// Map returns the answers as a q1..q20 keyed map.
func (a Answers) Map() map[string]string {
	m := make(map[string]string, NumQuestions)
	for i, v := range a {
		m[Key(i)] = v
	}
	return m
}

// HasAnswers reports whether any slot holds non-blank text. It is tracked
// independently of the submitted flag.
func HasAnswers(a Answers) bool {
	for _, v := range a {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// MarshalJSON writes all 20 keys in slot order.
func (a Answers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"` + Key(i) + `":`)
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts any subset of the canonical keys; missing keys
// become "". Unknown keys are rejected. A null answer is treated as "".
func (a *Answers) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*a = Answers{}
		return nil
	}

	var raw map[string]*string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("assessment answers: %w", err)
	}

	var out Answers
	for k, v := range raw {
		i, ok := Index(k)
		if !ok {
			return fmt.Errorf("assessment answers: unknown key %q", k)
		}
		if v != nil {
			out[i] = *v
		}
	}
	*a = out
	return nil
}

// NormalizeAnswers returns the answers to persist. An unsubmitted assessment
// is stored as 20 empty strings; a submitted one keeps the user input, with
// unset slots already empty.
func NormalizeAnswers(submitted bool, input Answers) Answers {
	if !submitted {
		return Answers{}
	}
	return input
}
