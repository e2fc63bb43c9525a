package aimcache

import (
	"reflect"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg := Config{}.Resolve(envMap(nil))
	if cfg.Host != DefaultHost || cfg.Port != DefaultPort || cfg.Password != "" || cfg.Cluster {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DialTimeout != 5*time.Second || cfg.ReadTimeout != 3*time.Second || cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("unexpected default timeouts: %+v", cfg)
	}
	if got := cfg.Addrs(); !reflect.DeepEqual(got, []string{"127.0.0.1:6379"}) {
		t.Fatalf("Addrs = %v", got)
	}
}

func TestResolveFromEnvironment(t *testing.T) {
	cfg := Config{}.Resolve(envMap(map[string]string{
		EnvHost:     "cache.internal",
		EnvPort:     "6380",
		EnvPassword: "s3cret",
		EnvCluster:  "true",
	}))
	want := Config{
		Host: "cache.internal", Port: 6380, Password: "s3cret", Cluster: true,
		DialTimeout: 5 * time.Second, ReadTimeout: 3 * time.Second, WriteTimeout: 3 * time.Second,
	}
	if cfg != want {
		t.Fatalf("Resolve = %+v want %+v", cfg, want)
	}
}

func TestResolveExplicitWinsOverEnvironment(t *testing.T) {
	cfg := Config{Host: "explicit", Port: 7000, Password: "mine"}.Resolve(envMap(map[string]string{
		EnvHost:     "env-host",
		EnvPort:     "6380",
		EnvPassword: "env-pass",
	}))
	if cfg.Host != "explicit" || cfg.Port != 7000 || cfg.Password != "mine" {
		t.Fatalf("explicit values overridden: %+v", cfg)
	}
}

func TestResolveIgnoresGarbage(t *testing.T) {
	for _, port := range []string{"abc", "-1", "0", "70000", ""} {
		cfg := Config{}.Resolve(envMap(map[string]string{EnvPort: port}))
		if cfg.Port != DefaultPort {
			t.Fatalf("port %q: got %d want default", port, cfg.Port)
		}
	}
	for _, v := range []string{"", "no", "0", "false", "maybe"} {
		if (Config{}).Resolve(envMap(map[string]string{EnvCluster: v})).Cluster {
			t.Fatalf("cluster %q should be false", v)
		}
	}
	for _, v := range []string{"1", "true", "TRUE", " t "} {
		if !(Config{}).Resolve(envMap(map[string]string{EnvCluster: v})).Cluster {
			t.Fatalf("cluster %q should be true", v)
		}
	}
}

func TestAddrsClusterSeeds(t *testing.T) {
	cfg := Config{Host: "a, b:7001 ,,c", Port: 7000}
	want := []string{"a:7000", "b:7001", "c:7000"}
	if got := cfg.Addrs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Addrs = %v want %v", got, want)
	}
}

func TestEachCacheKeepsItsOwnConfig(t *testing.T) {
	a, err := New[string](Options[string]{Config: Config{Host: "a"}, Env: envMap(nil)})
	if err != nil {
		t.Fatal(err)
	}
	b, err := New[string](Options[string]{Config: Config{Host: "b", Port: 7000}, Env: envMap(nil)})
	if err != nil {
		t.Fatal(err)
	}
	if a.Config().Host != "a" || a.Config().Port != DefaultPort {
		t.Fatalf("first cache config changed: %+v", a.Config())
	}
	if b.Config().Host != "b" || b.Config().Port != 7000 {
		t.Fatalf("second cache config: %+v", b.Config())
	}
}
