package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"newsvendor-mcp/internal/simulation"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Params             simulation.Parameters
	Policy1Quantity    int
	Policy2Quantity    int
	DefaultSimulations int
	MaxSimulations     int
	MaxStoredRuns      int // 0 keeps every run
	SeedMode           simulation.SeedMode
	PersistRuns        bool
	DataPath           string
	LogDir             string
	CacheDir           string
}

// ParameterFile is the YAML layout accepted by LoadParameterFile. Omitted
// keys keep the values already configured.
type ParameterFile struct {
	Parameters *simulation.Parameters `yaml:"parameters"`
	Policies   struct {
		Policy1Quantity *int `yaml:"policy_1_quantity"`
		Policy2Quantity *int `yaml:"policy_2_quantity"`
	} `yaml:"policies"`
	Simulations struct {
		Default  *int    `yaml:"default"`
		Max      *int    `yaml:"max"`
		SeedMode *string `yaml:"seed_mode"`
	} `yaml:"simulations"`
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	defaults := simulation.DefaultParameters()

	seedMode, err := simulation.ParseSeedMode(getEnv("SEED_MODE", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_MODE: %w", err)
	}

	cfg := &AppConfig{
		Params: simulation.Parameters{
			Mean:             getEnvFloat("DEMAND_MEAN", defaults.Mean),
			StdDev:           getEnvFloat("DEMAND_STDDEV", defaults.StdDev),
			SalePrice:        getEnvFloat("SALE_PRICE", defaults.SalePrice),
			Profit:           getEnvFloat("UNIT_PROFIT", defaults.Profit),
			LiquidationPrice: getEnvFloat("LIQUIDATION_PRICE", defaults.LiquidationPrice),
			PurchaseCost:     getEnvFloat("PURCHASE_COST", defaults.PurchaseCost),
			ExcessLoss:       getEnvFloat("EXCESS_LOSS", defaults.ExcessLoss),
		},
		Policy1Quantity:    getEnvInt("POLICY_1_QUANTITY", simulation.DefaultPolicy1Quantity),
		Policy2Quantity:    getEnvInt("POLICY_2_QUANTITY", simulation.DefaultPolicy2Quantity),
		DefaultSimulations: getEnvInt("DEFAULT_SIMULATIONS", 100),
		MaxSimulations:     getEnvInt("MAX_SIMULATIONS", 10000),
		MaxStoredRuns:      getEnvInt("MAX_STORED_RUNS", 50),
		SeedMode:           seedMode,
		PersistRuns:        getEnvBool("PERSIST_RUNS", false),
		DataPath:           dataPath,
		LogDir:             logDir,
		CacheDir:           cacheDir,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadParameterFile overlays the YAML file at path onto cfg.
func (c *AppConfig) LoadParameterFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read parameter file: %w", err)
	}

	// Decoding into a copy of the current parameters lets the file set only some keys.
	params := c.Params
	file := ParameterFile{Parameters: &params}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse parameter file %s: %w", path, err)
	}

	if file.Parameters != nil {
		c.Params = *file.Parameters
	}
	if v := file.Policies.Policy1Quantity; v != nil {
		c.Policy1Quantity = *v
	}
	if v := file.Policies.Policy2Quantity; v != nil {
		c.Policy2Quantity = *v
	}
	if v := file.Simulations.Default; v != nil {
		c.DefaultSimulations = *v
	}
	if v := file.Simulations.Max; v != nil {
		c.MaxSimulations = *v
	}
	if v := file.Simulations.SeedMode; v != nil {
		mode, err := simulation.ParseSeedMode(*v)
		if err != nil {
			return fmt.Errorf("parameter file %s: %w", path, err)
		}
		c.SeedMode = mode
	}

	log.Debug().Str("path", path).Msg("Applied parameter file")
	return c.Validate()
}

// Validate checks the configured parameters and simulation bounds.
func (c *AppConfig) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Policy1Quantity <= 0 || c.Policy2Quantity <= 0 {
		return fmt.Errorf("policy order quantities must be > 0 (got %d, %d)", c.Policy1Quantity, c.Policy2Quantity)
	}
	if c.MaxSimulations <= 0 {
		return fmt.Errorf("MAX_SIMULATIONS must be > 0, got %d", c.MaxSimulations)
	}
	// One policy comparison stores three runs at once.
	if c.MaxStoredRuns < 0 || (c.MaxStoredRuns > 0 && c.MaxStoredRuns < 3) {
		return fmt.Errorf("MAX_STORED_RUNS must be 0 (unlimited) or >= 3, got %d", c.MaxStoredRuns)
	}
	if c.DefaultSimulations < 0 || c.DefaultSimulations > c.MaxSimulations {
		return fmt.Errorf("DEFAULT_SIMULATIONS must be within [0, %d], got %d", c.MaxSimulations, c.DefaultSimulations)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring malformed integer setting")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring malformed number setting")
	}
	return fallback
}
