package i

import (
	"context"

	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
)

// Prover is the proving backend.
type Prover interface {
	// Prove runs the program image over env. It blocks until the receipt is sealed.
	Prove(ctx context.Context, image zkvm.ImageID, env *zkvm.ExecutorEnv, profile zkvm.Profile) (*zkvm.Receipt, error)

	// Verify checks r against image. Conditional receipts need their assumption receipts.
	Verify(ctx context.Context, r *zkvm.Receipt, image zkvm.ImageID, assumptions ...*zkvm.Receipt) error
}
