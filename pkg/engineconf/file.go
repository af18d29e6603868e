package engineconf

type cfg interface {
	// GlobalMap returns a copy of the top-level (global) configuration map.
	GlobalMap() map[string]string
}

type ConfigFile struct {
	cfg
}

func NewConfigFile(path string) (*ConfigFile, error) {
	var f cfg
	f, err := newinicfg(path)
	if err != nil {
		return nil, err
	}
	return &ConfigFile{f}, nil
}

// GlobalConfig returns a new *engineconf.Config representing the top-level
// (global) configuration.
func (c *ConfigFile) GlobalConfig() *Config {
	return New(c.GlobalMap())
}
