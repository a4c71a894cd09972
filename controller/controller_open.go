package controller

import (
	"errors"
	"fmt"
	"os"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel/ipv6Header"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/checksum"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/gZipCompression"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/none"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/zLibCompression"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/zStdCompression"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/recorder"
)

func defaultProcessor() processorData {
	return processorData{
		None:            none.GetDefault(),
		Checksum:        checksum.GetDefault(),
		GZipCompression: gZipCompression.GetDefault(),
		ZLibCompression: zLibCompression.GetDefault(),
		ZStdCompression: zStdCompression.GetDefault(),
	}
}

func defaultOutput() outputConfig {
	return outputConfig{
		File:       config.MakePath("", false, config.Display{Description: "The payload file, both roles read the same one."}),
		ResultsDir: config.MakePath(".", true, config.Display{Description: "Directory of the results CSV files."}),
		SQLite:     config.MakePath("", true, config.Display{Description: "Optional SQLite database keeping every session."}),
	}
}

// toConfig maps the run options onto the param structs, which carry the ranges
func toConfig(opts Options) (configData, error) {
	cd := configData{OpCode: "config", Channel: ipv6Header.GetDefault(), Output: defaultOutput()}

	cd.Channel.Role.Value = opts.Role
	cd.Channel.Field.Value = opts.Field
	cd.Channel.CleanCount.Value = opts.ConsecutiveClean
	cd.Channel.StegoCount.Value = opts.ConsecutiveStego
	cd.Channel.Repetitions.Value = opts.Repetitions
	cd.Channel.Queue.Value = opts.Queue

	cd.Output.File.Value = opts.File
	cd.Output.ResultsDir.Value = opts.ResultsDir
	cd.Output.SQLite.Value = opts.SQLite
	if err := config.ValidateConfigSet(struct {
		Channel ipv6Header.ConfigClient
		Output  outputConfig
	}{cd.Channel, cd.Output}); err != nil {
		return cd, err
	}

	for _, name := range opts.Processors {
		cd.Processors = append(cd.Processors, processorConfig{Type: name, Data: defaultProcessor()})
	}
	return cd, nil
}

// Retrieve the processor entity
func (ctr *Controller) retrieveProcessor(pconf processorConfig) (processor.Processor, *processorConfig, error) {
	var (
		p       processor.Processor
		newConf processorConfig
		err     error
	)
	newConf.Data = defaultProcessor()
	newConf.Type = pconf.Type
	if err = config.CopyValueSet(&newConf.Data, pconf.Data, []string{newConf.Type}); err != nil {
		return nil, nil, errors.New("Invalid Processor Type: " + pconf.Type)
	}
	if err = config.ValidateConfigSet(&newConf.Data); err != nil {
		return nil, nil, err
	}

	switch newConf.Type {
	case "None":
		p, err = none.ToProcessor(newConf.Data.None)
	case "Checksum":
		p, err = checksum.ToProcessor(newConf.Data.Checksum)
	case "GZipCompression":
		p, err = gZipCompression.ToProcessor(newConf.Data.GZipCompression)
	case "ZLibCompression":
		p, err = zLibCompression.ToProcessor(newConf.Data.ZLibCompression)
	case "ZStdCompression":
		p, err = zStdCompression.ToProcessor(newConf.Data.ZStdCompression)
	default:
		err = errors.New("Invalid Processor Type: " + newConf.Type)
	}
	if err != nil {
		return nil, nil, err
	}
	return p, &newConf, nil
}

// Retrieve the layers of the channel: the processed payload, then the channel carrying it
func (ctr *Controller) retrieveLayers() error {
	var (
		pconfs []processorConfig
		err    error
	)
	if ctr.payload, err = os.ReadFile(ctr.config.Output.File.Value); err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	ctr.processed = ctr.payload
	for i := range ctr.config.Processors {
		p, pconf, err := ctr.retrieveProcessor(ctr.config.Processors[i])
		if err != nil {
			return err
		}
		if ctr.processed, err = p.Process(ctr.processed); err != nil {
			return errors.New("Unable to process payload: " + err.Error())
		}
		ctr.processors = append(ctr.processors, p)
		pconfs = append(pconfs, *pconf)
	}
	ctr.config.Processors = pconfs

	if ctr.channel, err = ipv6Header.ToChannel(ctr.config.Channel, ctr.processed, ctr.onComplete); err != nil {
		return err
	}
	ctr.rounds = ctr.config.Channel.Rounds()
	return nil
}

func (ctr *Controller) openRecorders() error {
	c, err := recorder.NewCSVRecorder(ctr.config.Output.ResultsDir.Value)
	if err != nil {
		return err
	}
	ctr.recorders = append(ctr.recorders, c)
	if path := ctr.config.Output.SQLite.Value; path != "" {
		if ctr.store, err = recorder.NewSQLiteRecorder(path); err != nil {
			return err
		}
		ctr.recorders = append(ctr.recorders, ctr.store)
	}
	return nil
}

// Unprocess the received symbols in reverse order
func (ctr *Controller) restore(data []byte) ([]byte, error) {
	var err error
	for i := len(ctr.processors) - 1; i >= 0; i-- {
		if data, err = ctr.processors[i].Unprocess(data); err != nil {
			return nil, errors.New("Unable to unprocess payload: " + err.Error())
		}
	}
	return data, nil
}
