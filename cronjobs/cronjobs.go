package cronjobs

import (
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/robfig/cron/v3"

	"civicfix/db"
)

// faceVerificationTTL is how long gate artifacts are kept before the nightly
// sweep removes them. The resolution policy's freshness window is much
// shorter; this only bounds storage growth.
const faceVerificationTTL = 24 * time.Hour

func InitCronJobs(firestoreClient *firestore.Client) {
	log.Println("\nStarting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	// Expired face verification sweep: every night at 03:00
	_, err := c.AddFunc("0 3 * * *", func() {
		log.Println("\nCronJob: Expired face verification sweep running")
		cutoff := time.Now().UTC().Add(-faceVerificationTTL)
		deleted, err := db.DeleteExpiredFaceVerifications(firestoreClient, cutoff)
		if err != nil {
			log.Printf("Face verification sweep failed: %v", err)
			return
		}
		log.Printf("Face verification sweep removed %d expired artifacts", deleted)
	})
	if err != nil {
		log.Println("Error scheduling face verification sweep:", err)
	}

	c.Start()
}
