// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "time"

// SetClock replaces the service clock in tests.
func (service *Service) SetClock(now func() time.Time) { service.now = now }
