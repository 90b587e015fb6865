package sir

import (
	"encoding/json"
	"fmt"
	"math"
)

// Field names of the serialized records.
const (
	FieldPopulation   = "population"
	FieldAgeFractions = "age_divided_populations"
	FieldSusceptible  = "susceptible"
	FieldInfected     = "infected"
	FieldRecovered    = "recovered"
	FieldConnection   = "connection"
	FieldMovement     = "movement"
	FieldVirulence    = "virulence"
	FieldRecovery     = "recovery"
)

// DecodeState creates a State from a record. All of population,
// age_divided_populations, susceptible, infected, and recovered are required.
func DecodeState(record map[string]any) (State, error) {
	d := decoder{record: "state", fields: record}

	s := State{
		Population:   d.population(FieldPopulation),
		AgeFractions: d.floats(FieldAgeFractions),
		Susceptible:  d.float(FieldSusceptible),
		Infected:     d.float(FieldInfected),
		Recovered:    d.float(FieldRecovered),
	}

	if d.err != nil {
		return State{}, d.err
	}

	return s, nil
}

// EncodeState turns a State into a record that DecodeState accepts.
func EncodeState(s State) map[string]any {
	return map[string]any{
		FieldPopulation:   s.Population,
		FieldAgeFractions: append([]float64{}, s.AgeFractions...),
		FieldSusceptible:  s.Susceptible,
		FieldInfected:     s.Infected,
		FieldRecovered:    s.Recovered,
	}
}

// DecodeVicinity creates a Vicinity from a record with the required
// connection and movement fields.
func DecodeVicinity(record map[string]any) (Vicinity, error) {
	d := decoder{record: "vicinity", fields: record}

	v := Vicinity{
		Connection: d.floats(FieldConnection),
		Movement:   d.floats(FieldMovement),
	}

	if d.err != nil {
		return Vicinity{}, d.err
	}

	return v, nil
}

// EncodeVicinity turns a Vicinity into a record that DecodeVicinity accepts.
func EncodeVicinity(v Vicinity) map[string]any {
	return map[string]any{
		FieldConnection: append([]float64{}, v.Connection...),
		FieldMovement:   append([]float64{}, v.Movement...),
	}
}

// DecodeConfig creates a Config from a record with the required virulence
// and recovery fields.
func DecodeConfig(record map[string]any) (Config, error) {
	d := decoder{record: "config", fields: record}

	c := Config{
		Virulence: d.floats(FieldVirulence),
		Recovery:  d.floats(FieldRecovery),
	}

	if d.err != nil {
		return Config{}, d.err
	}

	return c, nil
}

// DecodeConfigOrDefault is DecodeConfig, except that an absent record
// yields DefaultConfig.
func DecodeConfigOrDefault(record map[string]any) (Config, error) {
	if record == nil {
		return DefaultConfig(), nil
	}

	return DecodeConfig(record)
}

// EncodeConfig turns a Config into a record that DecodeConfig accepts.
func EncodeConfig(c Config) map[string]any {
	return map[string]any{
		FieldVirulence: append([]float64{}, c.Virulence...),
		FieldRecovery:  append([]float64{}, c.Recovery...),
	}
}

// ParseState decodes a JSON object into a State.
func ParseState(data []byte) (State, error) {
	record, err := parseRecord("state", data)
	if err != nil {
		return State{}, err
	}

	return DecodeState(record)
}

// MarshalState encodes a State as a JSON object.
func MarshalState(s State) ([]byte, error) {
	return json.Marshal(EncodeState(s))
}

// ParseVicinity decodes a JSON object into a Vicinity.
func ParseVicinity(data []byte) (Vicinity, error) {
	record, err := parseRecord("vicinity", data)
	if err != nil {
		return Vicinity{}, err
	}

	return DecodeVicinity(record)
}

// MarshalVicinity encodes a Vicinity as a JSON object.
func MarshalVicinity(v Vicinity) ([]byte, error) {
	return json.Marshal(EncodeVicinity(v))
}

// ParseConfig decodes a JSON object into a Config. The JSON literal null
// yields DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	record, err := parseRecord("config", data)
	if err != nil {
		return Config{}, err
	}

	return DecodeConfigOrDefault(record)
}

// MarshalConfig encodes a Config as a JSON object.
func MarshalConfig(c Config) ([]byte, error) {
	return json.Marshal(EncodeConfig(c))
}

func parseRecord(name string, data []byte) (map[string]any, error) {
	var record map[string]any

	err := json.Unmarshal(data, &record)
	if err != nil {
		return nil, &DecodeError{Record: name, Err: err}
	}

	return record, nil
}

// decoder reads typed fields from a record and keeps the first error.
type decoder struct {
	record string
	fields map[string]any
	err    error
}

func (d *decoder) fail(field string, err error) {
	if d.err == nil {
		d.err = &DecodeError{Record: d.record, Field: field, Err: err}
	}
}

func (d *decoder) lookup(field string) (any, bool) {
	raw, ok := d.fields[field]
	if !ok {
		d.fail(field, ErrMissingField)
		return nil, false
	}

	return raw, true
}

func (d *decoder) float(field string) float64 {
	raw, ok := d.lookup(field)
	if !ok {
		return 0
	}

	f, err := toFloat(raw)
	if err != nil {
		d.fail(field, err)
		return 0
	}

	return f
}

func (d *decoder) floats(field string) []float64 {
	raw, ok := d.lookup(field)
	if !ok {
		return nil
	}

	var list []any
	switch raw := raw.(type) {
	case []float64:
		for _, f := range raw {
			list = append(list, f)
		}
	case []any:
		list = raw
	default:
		d.fail(field, fmt.Errorf("%w: expected an array of numbers, got %T",
			ErrInvalidField, raw))
		return nil
	}

	out := make([]float64, len(list))
	for i, item := range list {
		f, err := toFloat(item)
		if err != nil {
			d.fail(field, fmt.Errorf("element %d: %w", i, err))
			return nil
		}

		out[i] = f
	}

	return out
}

func (d *decoder) population(field string) uint32 {
	raw, ok := d.lookup(field)
	if !ok {
		return 0
	}

	f, err := toFloat(raw)
	if err != nil {
		d.fail(field, err)
		return 0
	}

	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		d.fail(field, fmt.Errorf("%w: %v is not an unsigned 32-bit integer",
			ErrInvalidField, raw))
		return 0
	}

	return uint32(f)
}

// toFloat accepts any finite number.
func toFloat(raw any) (float64, error) {
	f, err := number(raw)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite number",
			ErrInvalidField, f)
	}

	return f, nil
}

func number(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidField, err)
		}

		return f, nil
	default:
		return 0, fmt.Errorf("%w: expected a number, got %T",
			ErrInvalidField, raw)
	}
}
