package domain

// Level 是经验值驱动的成长等级，与付费会员档位（Tier）相互独立。
type Level string

const (
	LevelStarter Level = "starter"
	LevelPacer   Level = "pacer"
	LevelElite   Level = "elite"
)

// levelThreshold 按升序排列的等级门槛表。
// 等级永远由 CurrentXP 对照这张表推导，绝不冗余存储，避免两者漂移。
type levelThreshold struct {
	Level           Level
	MinXP           int64
	RenewalDiscount int // 续费折扣，百分比
}

var levelThresholds = []levelThreshold{
	{Level: LevelStarter, MinXP: 0, RenewalDiscount: 0},
	{Level: LevelPacer, MinXP: 10000, RenewalDiscount: 5},
	{Level: LevelElite, MinXP: 15000, RenewalDiscount: 10},
}

// XPProgress 是某个经验值对应的成长状态。
type XPProgress struct {
	CurrentXP       int64
	Level           Level
	NextLevel       Level // 已到顶级时为空
	XPToNextLevel   int64 // 顶级按约定为 0
	RenewalDiscount int
}

// Progress 根据经验值推导成长状态。纯函数。
// Level 取门槛不超过 currentXP 的最高一档。
func Progress(currentXP int64) XPProgress {
	if currentXP < 0 {
		currentXP = 0
	}

	idx := 0
	for i, t := range levelThresholds {
		if currentXP >= t.MinXP {
			idx = i
		}
	}

	p := XPProgress{
		CurrentXP:       currentXP,
		Level:           levelThresholds[idx].Level,
		RenewalDiscount: levelThresholds[idx].RenewalDiscount,
	}
	if idx+1 < len(levelThresholds) {
		next := levelThresholds[idx+1]
		p.NextLevel = next.Level
		p.XPToNextLevel = next.MinXP - currentXP
		if p.XPToNextLevel < 0 {
			p.XPToNextLevel = 0
		}
	}
	return p
}
