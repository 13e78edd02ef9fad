package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Cámara Sony HD-CAM001":      "camara-sony-hd-cam001",
		"Trípode Profesional":        "tripode-profesional",
		"  Micrófono   Inalámbrico ": "microfono-inalambrico",
		"Proyector / Epson!!":        "proyector-epson",
		"---":                        "",
		"ÑANDÚ 2000":                 "nandu-2000",
		"Ca\u0301mara":               "camara",
		"Mønitor Ørsted-Q1":          "monitor-orsted-q1",
		"Sony's Cam-X1":              "sonys-cam-x1",
		"Sony’s Cam-X1":              "sonys-cam-x1",
		"Straße-S1":                  "strasse-s1",
		"Æther-A1":                   "aether-a1",
		"Łódź-L1":                    "lodz-l1",
		"Œuvre đàn þing":             "oeuvre-dan-thing",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), in)
	}
}

func TestForItem(t *testing.T) {
	assert.Equal(t, "camara-x1", ForItem("Cámara", "X1"))
	assert.Equal(t, "x1", ForItem("", "X1"))
	assert.Equal(t, "x1", ForItem("   ", "X1"))
}
