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

package control

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/pno"
)

// State keeps the last known device state between server runs
type State struct {
	context.Context
	DB *bbolt.DB
}

func NewState(ctx context.Context, cfg *config.Config) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(cfg.DBPath, 0600, nil)
	if err != nil {
		return nil, err
	}
	// create buckets in the state database for all devices
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, device := range cfg.Devices {
			_, err = tx.CreateBucketIfNotExists([]byte(bucketName(device.Name)))
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &State{
		Context: ctx,
		DB:      db,
	}, nil
}

func bucketName(deviceName string) string {
	return fmt.Sprintf("%s%s", BucketNamePrefix, deviceName)
}

func uint32ToByte(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func (s *State) Close() {
	s.DB.Close()
}

func (s *State) put(deviceName string, key string, value []byte) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return ErrBucketNotFound{Name: bucketName(deviceName)}
		}
		return b.Put([]byte(key), value)
	})
}

// get returns a copy of the value, bbolt values are only valid inside the transaction
func (s *State) get(deviceName string, key string) ([]byte, error) {
	var value []byte
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return ErrBucketNotFound{Name: bucketName(deviceName)}
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrKeyNotFound{Device: deviceName, Key: key}
		}
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

// SetStationMap stores the status word and the enabled map of a device
func (s *State) SetStationMap(deviceName string, word uint32, enabled uint16) error {
	log.Debug("Setting station map: device: %s word: 0x%08x enabled: 0x%04x", deviceName, word, enabled)
	if err := s.put(deviceName, KeyStationMap, uint32ToByte(word)); err != nil {
		return err
	}
	return s.put(deviceName, KeyEnabledMap, uint32ToByte(uint32(enabled)))
}

func (s *State) GetStationMap(deviceName string) (uint32, uint16, error) {
	word, err := s.get(deviceName, KeyStationMap)
	if err != nil {
		return 0, 0, err
	}
	enabled, err := s.get(deviceName, KeyEnabledMap)
	if err != nil {
		return 0, 0, err
	}
	if len(word) != 4 || len(enabled) != 4 {
		return 0, 0, ErrCorruptState{Device: deviceName, Key: KeyStationMap}
	}
	return binary.LittleEndian.Uint32(word), uint16(binary.LittleEndian.Uint32(enabled)), nil
}

// SetLastPno stores the last decoded PNO frame as a YAML document
func (s *State) SetLastPno(frame *pno.Frame) error {
	data, err := yaml.Marshal(frame)
	if err != nil {
		return err
	}
	return s.put(frame.Device, KeyLastPno, data)
}

func (s *State) GetLastPno(deviceName string) (*pno.Frame, error) {
	data, err := s.get(deviceName, KeyLastPno)
	if err != nil {
		return nil, err
	}
	frame := &pno.Frame{}
	if err := yaml.Unmarshal(data, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
