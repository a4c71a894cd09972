package zStdCompression

import (
	"errors"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
	"github.com/klauspost/compress/zstd"
)

type ConfigClient struct {
	Level config.SelectParam
}

func GetDefault() ConfigClient {
	return ConfigClient{
		Level: config.MakeSelect("default", []string{"default", "fastest", "best"}, config.Display{Description: "The zstd encoder level."}),
	}
}

func ToProcessor(cc ConfigClient) (*ZStdCompression, error) {
	switch cc.Level.Value {
	case "default":
		return newZStd(zstd.SpeedDefault)
	case "fastest":
		return newZStd(zstd.SpeedFastest)
	case "best":
		return newZStd(zstd.SpeedBestCompression)
	default:
		return nil, errors.New("Invalid compression level")
	}
}
