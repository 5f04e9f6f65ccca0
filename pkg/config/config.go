/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-polhemus/pkg/layers"
)

// Device is one SEU reachable through a serial-to-TCP bridge
type Device struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	SeuID   uint32 `json:"seuid"`
}

type MqttConfig struct {
	Broker      string `json:"broker,omitempty"`
	ClientID    string `json:"clientID,omitempty"`
	TopicPrefix string `json:"topicPrefix,omitempty"`
	// Rate is the max number of PNO frames per second published per device
	Rate float64 `json:"rate,omitempty"`
}

type Config struct {
	LogLevel   string `json:"logLevel,omitempty"`
	LogFile    string `json:"logFile,omitempty"`
	ApiAddress string `json:"apiAddress,omitempty"`
	DBPath     string `json:"dbPath,omitempty"`
	// StationMapDefault is the factory station map word used when the device state is reset
	StationMapDefault uint32 `json:"stationMapDefault"`
	// EnablePolicy is one of intersect, union
	EnablePolicy     string      `json:"enablePolicy,omitempty"`
	MaxFrameSize     uint32      `json:"maxFrameSize,omitempty"`
	CommandTimeoutMs int         `json:"commandTimeoutMs,omitempty"`
	Mqtt             *MqttConfig `json:"mqtt,omitempty"`
	Devices          []*Device   `json:"devices"`
	filepath         string
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// LoadConfig reads the config file, it fails if the file does not exist
func (c *Config) LoadConfig() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Load reads the config file if it exists, otherwise the defaults are kept
func (c *Config) Load() error {
	err := c.LoadConfig()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) GetDeviceByName(name string) (*Device, error) {
	for _, device := range c.Devices {
		if device.Name == name {
			return device, nil
		}
	}
	return nil, ErrDeviceNotFound{Name: name}
}

func (c *Config) Policy() (layers.EnablePolicy, error) {
	return layers.ParseEnablePolicy(c.EnablePolicy)
}

func (c *Config) CommandTimeout() time.Duration {
	if c.CommandTimeoutMs <= 0 {
		return DefaultCommandTimeoutMs * time.Millisecond
	}
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		ApiAddress:        DefaultApiAddress,
		DBPath:            DefaultDBPath(),
		StationMapDefault: layers.DefaultStationMap,
		EnablePolicy:      DefaultEnablePolicy,
		MaxFrameSize:      layers.ViperMaxFrameSize,
		CommandTimeoutMs:  DefaultCommandTimeoutMs,
		Devices: []*Device{
			{
				Name:    DefaultDeviceName,
				Address: DefaultDeviceAddress,
				SeuID:   DefaultSeuID,
			},
		},
		filepath: DefaultConfigPath(),
	}
}
