package gZipCompression

import (
	"errors"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
	"github.com/klauspost/compress/gzip"
)

type ConfigClient struct {
	Level config.SelectParam
}

func GetDefault() ConfigClient {
	return ConfigClient{
		Level: config.MakeSelect("default", []string{"default", "fastest", "best"}, config.Display{Description: "The gzip compression level."}),
	}
}

func ToProcessor(cc ConfigClient) (*GZipCompression, error) {
	switch cc.Level.Value {
	case "default":
		return &GZipCompression{level: gzip.DefaultCompression}, nil
	case "fastest":
		return &GZipCompression{level: gzip.BestSpeed}, nil
	case "best":
		return &GZipCompression{level: gzip.BestCompression}, nil
	default:
		return nil, errors.New("Invalid compression level")
	}
}
