package zLibCompression

import (
	"errors"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
	"github.com/klauspost/compress/zlib"
)

type ConfigClient struct {
	Level config.SelectParam
}

func GetDefault() ConfigClient {
	return ConfigClient{
		Level: config.MakeSelect("default", []string{"default", "fastest", "best"}, config.Display{Description: "The zlib compression level."}),
	}
}

func ToProcessor(cc ConfigClient) (*ZLibCompression, error) {
	switch cc.Level.Value {
	case "default":
		return &ZLibCompression{level: zlib.DefaultCompression}, nil
	case "fastest":
		return &ZLibCompression{level: zlib.BestSpeed}, nil
	case "best":
		return &ZLibCompression{level: zlib.BestCompression}, nil
	default:
		return nil, errors.New("Invalid compression level")
	}
}
