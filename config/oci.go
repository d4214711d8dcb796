package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/sirupsen/logrus"
)

// LoadOCIConfig loads the OCI configuration profile of a storage target.
func LoadOCIConfig(target StorageTarget) (common.ConfigurationProvider, error) {
	configFilePath, err := expandHome(target.OCIConfigFile)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"storage": target.Name,
		"file":    configFilePath,
		"profile": target.OCIProfile,
	}).Debug("Loading OCI config")

	provider, err := common.ConfigurationProviderFromFileWithProfile(configFilePath, target.OCIProfile, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load OCI config from file: %w", err)
	}
	return provider, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
