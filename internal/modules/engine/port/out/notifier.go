package out

import (
	interpdomain "dbgsh/internal/modules/interp/domain"
)

// Notifier is the engine's view of the interpreter fan-out. Calls are
// synchronous and one-way; delivery order across interpreters is the
// controller's concern.
type Notifier interface {
	NotifySignalReceived(sig interpdomain.Signal)
	NotifySignalExited(sig interpdomain.Signal)
	NotifyNormalStop(stop interpdomain.StopInfo)
	NotifyExited(status int)
	NotifyNoHistory()
	NotifySyncExecutionDone()
	NotifyUserSelectedContextChanged(sel interpdomain.UserSelection)
	NotifyNewThread(t interpdomain.Thread)
	NotifyThreadExited(t interpdomain.Thread, silent bool)
	NotifyInferiorAdded(inf interpdomain.Inferior)
	NotifyInferiorAppeared(inf interpdomain.Inferior)
}
