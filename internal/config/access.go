package config

// AccessRule grants a level on connections matching Pattern.
type AccessRule struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
}

// User represents an SSH user in the config file.
type User struct {
	Name       string       `yaml:"name"`
	Admin      bool         `yaml:"admin"`
	PublicKeys []string     `yaml:"public_keys"`
	Access     []AccessRule `yaml:"access"`
}

// PublicConnection grants a level on matching connections to every user.
type PublicConnection struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
}
