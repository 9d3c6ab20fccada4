package modelmill

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

// Serializer turns an arbitrary value into a message part.
type Serializer func(data any) (io.Reader, error)

// Serializers contains the serializers usable with WithSerializable.
var Serializers = struct {
	Json Serializer
	Csv  Serializer
}{
	Json: serializeJson,
	Csv:  serializeCsv,
}

func serializeJson(data any) (io.Reader, error) {
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "could not serialize data to JSON")
	}

	return bytes.NewReader(buf), nil
}

func serializeCsv(data any) (io.Reader, error) {
	records, ok := data.([][]string)
	if !ok {
		return nil, errors.New("CSV serializer expects a [][]string")
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.WriteAll(records); err != nil {
		return nil, errors.Wrap(err, "could not serialize data to CSV")
	}

	return &buf, nil
}
