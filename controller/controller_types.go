package controller

import (
	"sync"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel/ipv6Header"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/config"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/checksum"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/gZipCompression"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/none"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/zLibCompression"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/processor/zStdCompression"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/recorder"
	"github.com/gorilla/websocket"
)

// Options is everything a run needs, filled from the config file, the
// environment and the command line
type Options struct {
	Role             string   `mapstructure:"role"`
	File             string   `mapstructure:"file"`
	Field            string   `mapstructure:"field"`
	ConsecutiveClean uint64   `mapstructure:"consecutive_clean"`
	ConsecutiveStego uint64   `mapstructure:"consecutive_stego"`
	Repetitions      uint64   `mapstructure:"repetitions"`
	Queue            uint16   `mapstructure:"queue"`
	PcapIn           string   `mapstructure:"pcap_in"`
	PcapOut          string   `mapstructure:"pcap_out"`
	ResultsDir       string   `mapstructure:"results_dir"`
	SQLite           string   `mapstructure:"sqlite"`
	Listen           string   `mapstructure:"listen"`
	Processors       []string `mapstructure:"processors"`
}

func DefaultOptions() Options {
	def := ipv6Header.GetDefault()
	// Role has no default, a run must name it
	return Options{
		Field:      def.Field.Value,
		Queue:      def.Queue.Value,
		ResultsDir: ".",
	}
}

// The go json library only decodes the keys present in both the message
// and the struct, so a message is decoded once for its OpCode and a second
// time for its content
type command struct {
	OpCode string
}

type messageType struct {
	OpCode  string
	Message string
}

type configData struct {
	OpCode     string
	Channel    ipv6Header.ConfigClient
	Processors []processorConfig
	Output     outputConfig
}

type outputConfig struct {
	File       config.PathParam
	ResultsDir config.PathParam
	SQLite     config.PathParam
}

type processorConfig struct {
	Type string
	Data processorData
}

type processorData struct {
	None            none.ConfigClient
	Checksum        checksum.ConfigClient
	GZipCompression gZipCompression.ConfigClient
	ZLibCompression zLibCompression.ConfigClient
	ZStdCompression zStdCompression.ConfigClient
}

type sessionMessage struct {
	OpCode          string
	Role            string
	Field           string
	Repetition      int
	Expected        int
	Symbols         int
	DurationMs      float64
	AvgProcessingMs float64
	Bandwidth       float64
	Failures        int
	PercentCorrect  float64
	Interrupted     bool
}

type statusMessage struct {
	OpCode     string
	State      string
	Repetition int
	Rounds     uint64
}

type historyMessage struct {
	OpCode   string
	Sessions []sessionMessage
}

type Controller struct {
	config     configData
	channel    *ipv6Header.Channel
	processors []processor.Processor
	payload    []byte
	processed  []byte
	rounds     uint64
	recorders  recorder.Multi
	store      *recorder.SQLiteRecorder
	drainOnce  sync.Once

	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]bool
	clientLock sync.Mutex
	waitGroup  sync.WaitGroup
	clientStop chan interface{}
	recvStop   chan interface{}
	sendStop   chan interface{}
	doneWsSend chan interface{}
	doneWsRecv chan interface{}
	wsSend     chan []byte
	wsRecv     chan []byte
}
