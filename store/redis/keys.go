package redis

// Key layout.
const (
	prefixSetting = "hookbridge:setting:" // + setting key
	keyLog        = "hookbridge:log"      // list, newest at index 0
)

// settingKey returns the key holding one setting value.
func settingKey(key string) string {
	return prefixSetting + key
}
