package logger

type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Target string `yaml:"target"`
}
