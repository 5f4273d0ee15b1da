package ledger

import (
	"fmt"

	"github.com/noah-isme/backend-pos/internal/common"
)

func errOrderNotFound(id string) *common.AppError {
	return common.NotFoundError(fmt.Sprintf("order %s not found", id))
}
