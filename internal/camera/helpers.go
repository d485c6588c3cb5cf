package camera

import (
	"encoding/xml"
	"strconv"
)

func decodeXML(b []byte, v any) error {
	return xml.Unmarshal(b, v)
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
