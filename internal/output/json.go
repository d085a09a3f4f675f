package output

import (
	"encoding/json"

	"github.com/moneysplit/moneysplit/internal/domain"
)

// JSONFormatter renders results as JSON for scripting.
type JSONFormatter struct {
	Pretty bool
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatResult marshals one calculation.
func (jf *JSONFormatter) FormatResult(res *domain.TaxResult) (string, error) {
	return jf.marshal(res)
}

// FormatRecommendation marshals the full comparison.
func (jf *JSONFormatter) FormatRecommendation(rec *domain.Recommendation) (string, error) {
	return jf.marshal(rec)
}
