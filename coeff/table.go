package coeff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

var ErrUnsupportedKind = errors.New("unsupported coefficient payload kind")

// NotParsedMessage is the message of a record whose payload could not be parsed
const NotParsedMessage = "not parsed"

// KindJSON is the payload kind understood by JSONParser
const KindJSON = "json"

// Table maps join type → version → profile code → function type → record
type Table map[string]map[string]map[string]map[FunctionType]Record

// JoinRow is a persisted row joining a fit to a profile
type JoinRow struct {
	ID               int64           `json:"id"`
	TimestampCreated string          `json:"timestamp_created"`
	JoinType         string          `json:"join_type"`
	NamesVersions    []string        `json:"names_versions"`
	ProfileCode      string          `json:"profile_code"`
	IDJoin           int64           `json:"id_join"`
	IDTestLo         int64           `json:"id_test_lo"`
	IDTestHi         int64           `json:"id_test_hi"`
	Notes            string          `json:"notes"`
	Value            json.RawMessage `json:"value"`
}

// Parser decodes the value of a join row
type Parser func(value []byte, kind string) (Coefficients, error)

type payload struct {
	Coeff *Coefficients `json:"coeff"`
}

// JSONParser decodes a {"coeff": {...}} payload. The payload may also be a JSON string
// holding the encoded object. A payload without coefficients decodes to an empty record.
func JSONParser(value []byte, kind string) (Coefficients, error) {
	if kind != "" && !strings.EqualFold(kind, KindJSON) {
		return Coefficients{}, fmt.Errorf("%q, %w", kind, ErrUnsupportedKind)
	}

	raw := value
	var encoded string
	if err := json.Unmarshal(value, &encoded); err == nil {
		raw = []byte(encoded)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Coefficients{}, fmt.Errorf("unable to decode coefficient payload, %w", err)
	}
	if p.Coeff == nil {
		return Coefficients{}, nil
	}
	return *p.Coeff, nil
}

// ReadJoinRows decodes a JSON array of join rows, or an object with a rows array
func ReadJoinRows(data []byte) ([]JoinRow, error) {
	var rows []JoinRow
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}

	var wrapped struct {
		Rows []JoinRow `json:"rows"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("unable to decode join rows, %w", err)
	}
	return wrapped.Rows, nil
}

// NewTable builds a coefficient table with one record per row and name/version tag.
// Provenance is attached only when complete is set. A row whose value fails to parse is
// kept with the message "not parsed" and no function.
func NewTable(rows []JoinRow, complete bool, parser Parser, kind string) Table {
	if parser == nil {
		parser = JSONParser
	}

	table := make(Table)
	for _, row := range rows {
		c, err := parser(row.Value, kind)
		var message string
		if err != nil {
			c = Coefficients{}
			message = NotParsedMessage
		}

		versions, exists := table[row.JoinType]
		if !exists {
			versions = make(map[string]map[string]map[FunctionType]Record)
			table[row.JoinType] = versions
		}
		for _, v := range row.NamesVersions {
			profiles, exists := versions[v]
			if !exists {
				profiles = make(map[string]map[FunctionType]Record)
				versions[v] = profiles
			}
			functions, exists := profiles[row.ProfileCode]
			if !exists {
				functions = make(map[FunctionType]Record)
				profiles[row.ProfileCode] = functions
			}

			rec := Record{
				JoinType:      row.JoinType,
				NamesVersions: append([]string(nil), row.NamesVersions...),
				Notes:         row.Notes,
				String:        Stringify(&c),
				Message:       message,
				Coefficients:  c,
			}
			if complete {
				rec.Provenance = &Provenance{
					ID:               row.ID,
					TimestampCreated: row.TimestampCreated,
					ProfileCode:      row.ProfileCode,
					IDJoin:           row.IDJoin,
					IDTestLo:         row.IDTestLo,
					IDTestHi:         row.IDTestHi,
				}
			}
			functions[c.FunctionType] = rec
		}
	}
	return table
}
