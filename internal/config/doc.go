// Package config provides loading and environment overlay for ringlog
// configuration. It exposes a Default() baseline; Load reads a JSON file over
// it and FromEnv overlays RINGLOG_* variables.
//
// Example:
//
//	cfg, err := config.Load("/etc/ringlog.json")
//	if err != nil {
//	    return err
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
package config
