package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-21":           "2024-03-21",
		"2024-3-1":             "2024-03-01",
		"2024/03/21":           "2024-03-21",
		"2024年3月21日":           "2024-03-21",
		"2024.03.21":           "2024-03-21",
		"2024-03-21 14:30:00":  "2024-03-21",
		"2024/3/21 08:05:09":   "2024-03-21",
		"2024年03月21日 14:30:00": "2024-03-21",
		" 2024-03-21 ":         "2024-03-21",
		"下周一":                  "下周一",
		"":                     "",
		"2024-13-01":           "2024-13-01",
	}
	for in, want := range cases {
		assert.Equal(t, want, StandardizeDate(in), in)
	}
}
