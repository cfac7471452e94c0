package trap

import (
	"mikros/kernel/driver/systimer"
	"mikros/kernel/proc"
)

// timerInterval is how far apart preemption ticks are scheduled, in
// seconds.
const timerInterval = 1

var (
	timerOffsetFn = systimer.Offset
	timerSetFn    = systimer.Set
)

// TimerHandler implements preemption: the machine timer interrupt marks the
// running process Ready and programs the next tick. The generic dispatch
// step that follows then hands the hart to whoever the scheduler picks.
func TimerHandler(p *proc.Process) {
	p.State = proc.Ready
	timerSetFn(timerOffsetFn(timerInterval))
}
