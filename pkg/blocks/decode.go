package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/blockscape/pkg/errors"
)

// tupleLen is the number of positional fields in one record.
const tupleLen = 10

// Decode parses a provider response into points.
//
// The payload must be a JSON list of ten-element tuples (see the package
// documentation). Any shape violation fails the whole payload with
// MALFORMED_PAYLOAD. An empty list is valid and yields no points; callers
// decide whether that is an error. Each decoded point gets a BlinkPhase drawn
// from src.
func Decode(data []byte, src PhaseSource) ([]Point, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New(errors.ErrCodeMalformedPayload, "response is not a list of records")
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "decode record list")
	}

	points := make([]Point, 0, len(rows))
	for i, row := range rows {
		p, err := decodeTuple(row)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "record %d", i)
		}
		p.BlinkPhase = RandomPhase(src)
		points = append(points, p)
	}
	return points, nil
}

func decodeTuple(raw json.RawMessage) (Point, error) {
	var cols []json.RawMessage
	if err := json.Unmarshal(raw, &cols); err != nil {
		return Point{}, fmt.Errorf("not a tuple: %w", err)
	}
	if len(cols) != tupleLen {
		return Point{}, fmt.Errorf("tuple has %d fields, want %d", len(cols), tupleLen)
	}

	var (
		p   Point
		err error
	)
	if p.BlockNumber, err = decodeInt(cols[0], "blockNumber"); err != nil {
		return Point{}, err
	}
	if p.PostLink, err = decodeString(cols[1], "postLink"); err != nil {
		return Point{}, err
	}
	if p.PostContent, err = decodeString(cols[2], "postContent"); err != nil {
		return Point{}, err
	}
	if p.X, err = decodeFloat(cols[3], "x"); err != nil {
		return Point{}, err
	}
	if p.Y, err = decodeFloat(cols[4], "y"); err != nil {
		return Point{}, err
	}
	if p.ClusterID, err = decodeInt(cols[5], "clusterId"); err != nil {
		return Point{}, err
	}
	if p.CentroidX, err = decodeFloat(cols[6], "centroidX"); err != nil {
		return Point{}, err
	}
	if p.CentroidY, err = decodeFloat(cols[7], "centroidY"); err != nil {
		return Point{}, err
	}
	if p.SummaryShort, err = decodeString(cols[8], "clusterSummaryShort"); err != nil {
		return Point{}, err
	}
	if p.SummaryLong, err = decodeString(cols[9], "clusterSummaryLong"); err != nil {
		return Point{}, err
	}
	return p, nil
}

func decodeFloat(raw json.RawMessage, field string) (float64, error) {
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, fmt.Errorf("%s: expected number, got %s", field, raw)
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		return 0, fmt.Errorf("%s: not finite", field)
	}
	return *f, nil
}

func decodeInt(raw json.RawMessage, field string) (int, error) {
	f, err := decodeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s: expected integer, got %v", field, f)
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("%s: integer %v out of range", field, f)
	}
	return int(f), nil
}

func decodeString(raw json.RawMessage, field string) (string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", fmt.Errorf("%s: expected string, got %s", field, raw)
	}
	return *s, nil
}

// Encode writes points back into the positional tuple format accepted by
// [Decode]. BlinkPhase is not part of the wire format.
func Encode(points []Point) ([]byte, error) {
	rows := make([][tupleLen]any, len(points))
	for i, p := range points {
		rows[i] = [tupleLen]any{
			p.BlockNumber, p.PostLink, p.PostContent, p.X, p.Y,
			p.ClusterID, p.CentroidX, p.CentroidY, p.SummaryShort, p.SummaryLong,
		}
	}
	return json.Marshal(rows)
}
