/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import "time"

const (
	UserAgent = "bracketmaker/0.4.0 (+https://github.com/mikeb26/bracketmaker)"

	DefaultDataDirName    = ".bracketmaker"
	DefaultListenAddr     = ":8080"
	DefaultRosterCacheTTL = 10 * time.Minute

	// StateKeyPrefix is where tournament state lives in an S3 bucket. The
	// roster web cache shares the bucket under s3cache's hashed keys.
	StateKeyPrefix = "brackets"
	WebCacheDir    = "webcache"
)
