package service

const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierTeam         = "team"
	TierEnterprise   = "enterprise"
)

const gib = int64(1) << 30

var tierLimits = map[string]int64{
	TierStarter:      500 << 20,
	TierProfessional: 10 * gib,
	TierTeam:         50 * gib,
	TierEnterprise:   500 * gib,
}

// TierLimit returns the storage quota in bytes for tier. Unknown tiers get the starter quota.
func TierLimit(tier string) int64 {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierStarter]
}

func checkQuota(tier string, used, size int64) error {
	limit := TierLimit(tier)
	if used+size > limit {
		return &StorageLimitError{Used: used, Limit: limit, Size: size}
	}
	return nil
}
