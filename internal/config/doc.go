// Package config defines the smokectl configuration model and its loading
// logic. Configuration is layered: user settings from
// ~/.config/smokectl/config.yaml, then project settings from
// ./.smokectl/config.yaml, with project values taking precedence.
package config
