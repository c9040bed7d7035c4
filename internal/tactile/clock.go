package tactile

import "time"

var timeNow = time.Now
