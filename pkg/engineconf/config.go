// Copyright (c) 2011 The Grumble Authors
// The use of this source code is goverened by a BSD-style
// license that can be found in the LICENSE-file.

// Package engineconf holds the settings of a roomcrypt peer: the default
// room algorithms, the Diffie-Hellman group and the transfer parameters.
package engineconf

import (
	"strconv"
	"strings"
	"sync"

	"github.com/ciphertalk/roomcrypt/pkg/cryptstate"
)

// ModP2048 is the 2048-bit MODP group from RFC 3526.
const ModP2048 = "0xFFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A8AACAA68FFFFFFFFFFFFFFFF"

// Keys are matched case-insensitively; defaultCfg uses the lower-case form.
var defaultCfg = map[string]string{
	"cipher":      "SERPENT",
	"mode":        "CBC",
	"padding":     "PKCS7",
	"keybits":     "256",
	"dhgenerator": "2",
	"dhprime":     ModP2048,
	"chunksize":   "524288",
	"logfile":     "roomcrypt.log",
	"listenaddr":  "127.0.0.1:7373",
}

func canonical(key string) string {
	return strings.ToLower(key)
}

type Config struct {
	cfgMap map[string]string
	mutex  sync.RWMutex
}

// Create a new Config using cfgMap as the initial internal config map.
// If cfgMap is nil, New will create a new config map.
func New(cfgMap map[string]string) *Config {
	m := make(map[string]string, len(cfgMap))
	for k, v := range cfgMap {
		m[canonical(k)] = v
	}
	return &Config{cfgMap: m}
}

// GetAll gets a copy of the Config's internal config map
func (cfg *Config) GetAll() (all map[string]string) {
	cfg.mutex.RLock()
	defer cfg.mutex.RUnlock()

	all = make(map[string]string)
	for k, v := range cfg.cfgMap {
		all[k] = v
	}
	return
}

// Set a new value for a config key
func (cfg *Config) Set(key string, value string) {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()
	cfg.cfgMap[canonical(key)] = value
}

// Reset the value of a config key
func (cfg *Config) Reset(key string) {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()
	delete(cfg.cfgMap, canonical(key))
}

// StringValue gets the value of a specific config key encoded as a string
func (cfg *Config) StringValue(key string) (value string) {
	cfg.mutex.RLock()
	defer cfg.mutex.RUnlock()

	key = canonical(key)
	value, exists := cfg.cfgMap[key]
	if exists {
		return value
	}

	value, exists = defaultCfg[key]
	if exists {
		return value
	}

	return ""
}

// IntValue gets the value of a specific config key as an int
func (cfg *Config) IntValue(key string) (intval int) {
	str := cfg.StringValue(key)
	intval, _ = strconv.Atoi(str)
	return
}

// BoolValue gets the value of a specific config key as a bool
func (cfg *Config) BoolValue(key string) (boolval bool) {
	str := cfg.StringValue(key)
	boolval, _ = strconv.ParseBool(str)
	return
}

// Settings returns the default room settings described by the Cipher,
// Mode, Padding and KeyBits keys.
func (cfg *Config) Settings() (cryptstate.Settings, error) {
	keyBits, err := strconv.Atoi(cfg.StringValue("KeyBits"))
	if err != nil {
		keyBits = 0
	}
	return cryptstate.ParseSettings(
		cfg.StringValue("Cipher"),
		cfg.StringValue("Mode"),
		cfg.StringValue("Padding"),
		keyBits,
	)
}
