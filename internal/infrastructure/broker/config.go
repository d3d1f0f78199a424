package broker

type Config struct {
	URI        string `yaml:"-"`
	StreamName string `yaml:"stream_name"`
	MaxLen     int64  `yaml:"max_len"`
}

type PublisherConfig struct {
	Timeout int `yaml:"timeout_in_ms"`
}
