package xetcli

type Config struct {
	BinPath         string `yaml:"bin_path"`
	TokenEnv        string `yaml:"token_env"`
	PlaceholderRepo string `yaml:"placeholder_repo"`
	Token           string `yaml:"-"`
}
