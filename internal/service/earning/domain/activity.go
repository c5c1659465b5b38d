package domain

import (
	"errors"
	"time"
)

var (
	// ErrUnknownActivity 活动类型不在约定的枚举内
	ErrUnknownActivity = errors.New("earning: unknown activity type")
	// ErrMalformedEvent 入站活动事件缺少必填字段
	ErrMalformedEvent = errors.New("earning: malformed activity event")
	// ErrNotEligible 活动未通过奖励资格规则
	ErrNotEligible = errors.New("earning: activity not eligible for award")
)

// ActivityType 是可产生积分的活动类别。
type ActivityType string

const (
	ActivityEventCheckin ActivityType = "event_checkin" // 活动现场打卡
	ActivityRunCompleted ActivityType = "run_completed" // 完成一次跑步
	ActivityRaceFinished ActivityType = "race_finished" // 完成一场比赛
)

// CheckinKind 区分常规与专题活动打卡，两者积分与 TTL 不同。
type CheckinKind string

const (
	CheckinRoutine CheckinKind = "routine"
	CheckinSpecial CheckinKind = "special"
)

// ActivityEvent 是上游（打卡校验、跑步记录、比赛计时）产出的活动事实。
// 事件本身已通过地理围栏/时间窗校验，这里只负责算奖励。
type ActivityEvent struct {
	EventID     string       `json:"event_id"`
	OwnerID     string       `json:"owner_id"`
	Type        ActivityType `json:"type"`
	CheckinKind CheckinKind  `json:"checkin_kind,omitempty"`
	DistanceKM  float64      `json:"distance_km,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// Validate 校验事件的必填字段。
func (e *ActivityEvent) Validate() error {
	if e.EventID == "" || e.OwnerID == "" {
		return ErrMalformedEvent
	}
	switch e.Type {
	case ActivityEventCheckin:
		if e.CheckinKind != CheckinRoutine && e.CheckinKind != CheckinSpecial {
			return ErrMalformedEvent
		}
	case ActivityRunCompleted:
		if e.DistanceKM <= 0 {
			return ErrMalformedEvent
		}
	case ActivityRaceFinished:
		// 无额外字段
	default:
		return ErrUnknownActivity
	}
	return nil
}

const (
	routineCheckinPoints = 3
	specialCheckinPoints = 5
	raceFinishPoints     = 10

	// 积分与经验按固定倍率联动发放
	xpPerPoint = 100
)

// runDistanceBand 是跑步里程与积分的分段映射表。
var runDistanceBands = []struct {
	MaxKM  float64
	Points int64
}{
	{MaxKM: 2, Points: 1},
	{MaxKM: 5, Points: 3},
	{MaxKM: 10, Points: 5},
	{MaxKM: 21, Points: 10},
}

const runDistanceMaxPoints = 15 // ≥21km

// RunPoints 按里程分段计算跑步积分。
func RunPoints(distanceKM float64) int64 {
	for _, band := range runDistanceBands {
		if distanceKM < band.MaxKM {
			return band.Points
		}
	}
	return runDistanceMaxPoints
}

// Award 是一次活动结算出的奖励。
type Award struct {
	Points int64
	XP     int64
	Cause  string // 钱包侧的发放原因
}

// ComputeAward 按固定奖励表结算一次活动。
func ComputeAward(e *ActivityEvent) (Award, error) {
	if err := e.Validate(); err != nil {
		return Award{}, err
	}
	var award Award
	switch e.Type {
	case ActivityEventCheckin:
		if e.CheckinKind == CheckinSpecial {
			award = Award{Points: specialCheckinPoints, Cause: "special_activity"}
		} else {
			award = Award{Points: routineCheckinPoints, Cause: "routine_activity"}
		}
	case ActivityRunCompleted:
		award = Award{Points: RunPoints(e.DistanceKM), Cause: "routine_activity"}
	case ActivityRaceFinished:
		award = Award{Points: raceFinishPoints, Cause: "race_completion"}
	}
	award.XP = award.Points * xpPerPoint
	return award, nil
}
