package config

import "errors"

var errMissingTLS = errors.New("tls enabled but tls.cert_path or tls.key_path not provided")
