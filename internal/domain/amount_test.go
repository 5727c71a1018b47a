package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshalNumberOrString(t *testing.T) {
	var got struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a": 99.97, "b": " 99.97 ", "c": null}`), &got)
	require.NoError(t, err)

	assert.Equal(t, Amount("99.97"), got.A)
	assert.Equal(t, Amount("99.97"), got.B)
	assert.Equal(t, Amount(""), got.C)
	assert.False(t, got.C.IsPresent())
}

func TestAmountDecimal(t *testing.T) {
	d, err := Amount("12.005").Decimal()
	require.NoError(t, err)
	assert.Equal(t, "12.005", d.String())

	_, err = Amount("twelve").Decimal()
	assert.Error(t, err)

	_, err = Amount("").Decimal()
	assert.Error(t, err)
}

func TestAmountMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: "12.50", B: ""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"12.50","b":null}`, string(out))
}
