package engineconf

import (
	"gopkg.in/ini.v1"
)

type inicfg struct {
	file *ini.File
}

// newinicfg accepts a path, raw []byte or an io.ReadCloser, like
// ini.LoadSources.
func newinicfg(source interface{}) (*inicfg, error) {
	file, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true, UnescapeValueDoubleQuotes: true}, source)
	if err != nil {
		return nil, err
	}
	file.BlockMode = false // read only, avoid locking
	return &inicfg{file}, nil
}

func (f *inicfg) GlobalMap() map[string]string {
	return f.file.Section("").KeysHash()
}

var DefaultConfigFile = `# roomcrypt configuration file.
#
# The commented out settings represent the defaults.
# Make sure to enclose values containing # or ; in double quotes or backticks.

# Algorithms for rooms created by this peer.
# cipher is one of SERPENT, RC6, MAGENTA.
# mode is one of ECB, CBC, PCBC, CFB, OFB, CTR, RANDOM_DELTA.
# padding is one of ZEROS, ANSI_X923, PKCS7, ISO_10126.
# keybits is one of 128, 192, 256.
#cipher = SERPENT
#mode = CBC
#padding = PKCS7
#keybits = 256

# Diffie-Hellman group used for the room handshake. The prime accepts
# decimal or 0x-prefixed hexadecimal. The default is RFC 3526 group 14.
#dhgenerator = 2
#dhprime =

# Plaintext size of each file chunk in bytes. Must be a multiple of the
# cipher block size.
#chunksize = 524288

# Path to the log file. Leave empty to log to stderr only.
#logfile = roomcrypt.log

# Address the serve command listens on for websocket transfers.
#listenaddr = 127.0.0.1:7373
`
