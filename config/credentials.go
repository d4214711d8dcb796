package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Keys read from a storage credential file.
const (
	EnvBucketEndpoint  = "BUCKET_ENDPOINT"
	EnvBucketName      = "BUCKET_NAME"
	EnvBucketAccessID  = "BUCKET_ACCESS_ID"
	EnvBucketSecretKey = "BUCKET_SECRET_KEY"
	EnvBucketRegion    = "BUCKET_REGION"
	EnvBucketPathStyle = "BUCKET_PATH_STYLE"

	EnvOCIConfigFile = "OCI_CONFIG_FILE"
	EnvOCIProfile    = "OCI_PROFILE"
	EnvOCINamespace  = "OCI_NAMESPACE"
)

const (
	defaultRegion        = "us-east-1"
	defaultOCIConfigFile = "~/.oci/config"
	defaultOCIProfile    = "DEFAULT"
)

// LoadCredentials reads a KEY=value credential file and fills the connection
// fields of a StorageTarget for the given driver.
func LoadCredentials(envFile, driver string) (StorageTarget, error) {
	env, err := godotenv.Read(envFile)
	if err != nil {
		return StorageTarget{}, fmt.Errorf("failed to read credential file %s: %w", envFile, err)
	}
	return credentialsFromEnv(env, driver)
}

func credentialsFromEnv(env map[string]string, driver string) (StorageTarget, error) {
	target := StorageTarget{
		Driver:   driver,
		Bucket:   env[EnvBucketName],
		Endpoint: env[EnvBucketEndpoint],
	}

	if driver == DriverOCI {
		target.OCIConfigFile = valueOr(env[EnvOCIConfigFile], defaultOCIConfigFile)
		target.OCIProfile = valueOr(env[EnvOCIProfile], defaultOCIProfile)
		target.Namespace = env[EnvOCINamespace]
		if target.Bucket == "" {
			return StorageTarget{}, missingKeys([]string{EnvBucketName})
		}
		return target, nil
	}

	var missing []string
	for _, key := range []string{EnvBucketEndpoint, EnvBucketName, EnvBucketAccessID, EnvBucketSecretKey} {
		if env[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return StorageTarget{}, missingKeys(missing)
	}

	endpoint, err := normalizeEndpoint(env[EnvBucketEndpoint])
	if err != nil {
		return StorageTarget{}, err
	}
	target.Endpoint = endpoint
	target.AccessID = env[EnvBucketAccessID]
	target.SecretKey = env[EnvBucketSecretKey]
	target.Region = valueOr(env[EnvBucketRegion], defaultRegion)

	target.PathStyle = true
	if raw := env[EnvBucketPathStyle]; raw != "" {
		pathStyle, err := strconv.ParseBool(raw)
		if err != nil {
			return StorageTarget{}, fmt.Errorf("invalid %s value %q: %w", EnvBucketPathStyle, raw, err)
		}
		target.PathStyle = pathStyle
	}

	return target, nil
}

// normalizeEndpoint assumes https for endpoints given as a bare host.
func normalizeEndpoint(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", EnvBucketEndpoint, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid %s %q: scheme must be http or https", EnvBucketEndpoint, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid %s %q: no host", EnvBucketEndpoint, raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func missingKeys(keys []string) error {
	return errors.New("missing required keys: " + strings.Join(keys, ", "))
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
