package engine

import "github.com/platformbuilds/search-gateway/internal/gatewayerr"

func unknownKindError(kind Kind) error {
	return gatewayerr.ConfigurationError("unknown engine kind \""+string(kind)+"\"", nil)
}
