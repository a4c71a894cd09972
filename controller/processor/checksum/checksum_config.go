package checksum

import (
	"errors"
	"hash/crc32"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
)

var polynomials = map[string]uint32{
	"IEEE":       crc32.IEEE,
	"Castagnoli": crc32.Castagnoli,
	"Koopman":    crc32.Koopman,
}

type ConfigClient struct {
	Polynomial config.SelectParam
}

func GetDefault() ConfigClient {
	return ConfigClient{
		Polynomial: config.MakeSelect("IEEE", []string{"IEEE", "Castagnoli", "Koopman"}, config.Display{Description: "The crc32 polynomial of the checksum appended to the payload."}),
	}
}

// Both sides must select the same polynomial
func ToProcessor(cc ConfigClient) (*Checksum, error) {
	poly, ok := polynomials[cc.Polynomial.Value]
	if !ok {
		return nil, errors.New("Invalid polynomial: " + cc.Polynomial.Value)
	}
	return &Checksum{table: crc32.MakeTable(poly)}, nil
}
