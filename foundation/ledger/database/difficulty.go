package database

// Bounds for the difficulty retarget rule. Eight leading zero hex digits is
// already far beyond what a didactic single node can mine.
const (
	minDifficulty = 1
	maxDifficulty = 8
)

// retargetWindow is the number of trailing block intervals inspected by the
// retarget rule.
const retargetWindow = 5

// AdjustDifficulty returns the difficulty for the next block as a pure
// function of the current difficulty and the recent block timestamps. When
// recent blocks arrive in less than half the target spacing the difficulty
// steps up by one; when they take more than double it steps down by one.
// With fewer than two mined blocks the current difficulty is kept.
func AdjustDifficulty(current uint, blocks []Block, targetSeconds uint) uint {
	if len(blocks) < 3 || targetSeconds == 0 {
		return current
	}

	// Skip the genesis block, its timestamp is configuration, not a
	// mining observation.
	mined := blocks[1:]
	if len(mined) > retargetWindow+1 {
		mined = mined[len(mined)-(retargetWindow+1):]
	}

	var total int64
	for i := 1; i < len(mined); i++ {
		total += mined[i].Header.Timestamp - mined[i-1].Header.Timestamp
	}
	avg := total / int64(len(mined)-1)

	switch {
	case avg < int64(targetSeconds)/2 && current < maxDifficulty:
		return current + 1
	case avg > int64(targetSeconds)*2 && current > minDifficulty:
		return current - 1
	}

	return current
}
