package config

// CatalogConfig controls the demonstration dataset served when the store
// cannot be read.
type CatalogConfig struct {
	FallbackEnabled bool   // serve demo lots on read errors
	FallbackOnEmpty bool   // also serve them when no active lot exists
	FallbackFile    string // YAML file replacing the embedded dataset
	GridSize        int    // default size of the padded slot grid
}

// LoadCatalogConfig reads CATALOG_* variables.
func LoadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		FallbackEnabled: envBool("CATALOG_FALLBACK_ENABLED", true),
		FallbackOnEmpty: envBool("CATALOG_FALLBACK_ON_EMPTY", true),
		FallbackFile:    envStr("CATALOG_FALLBACK_FILE", ""),
		GridSize:        envInt("CATALOG_GRID_SIZE", 30),
	}
}
