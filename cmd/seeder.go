package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample geofences for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			if _, err := db.Exec("DELETE FROM geofences"); err != nil {
				log.Fatalf("failed to clear geofences: %v", err)
			}
			fmt.Println("Cleared existing geofences")
		}

		fences := []struct {
			name      string
			address   string
			latitude  float64
			longitude float64
			radius    float64
		}{
			{"Port of Douala - Main Terminal", "Rue de la Base Navale, Douala", 4.0511, 9.7679, 250},
			{"Bonaberi Shipyard", "Bonaberi Industrial Zone, Douala", 4.0726, 9.6808, 150},
			{"Limbe Dock Office", "Bota Wharf Road, Limbe", 4.0186, 9.1953, 100},
		}

		for _, fence := range fences {
			var exists int
			err := db.QueryRow("SELECT 1 FROM geofences WHERE name = $1", fence.name).Scan(&exists)
			if err == nil {
				fmt.Println("geofence already exists:", fence.name)
				continue
			}

			_, err = db.Exec(
				`INSERT INTO geofences (id, name, address, latitude, longitude, radius_meters, is_active, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, true, now())`,
				uuid.NewString(), fence.name, fence.address, fence.latitude, fence.longitude, fence.radius,
			)
			if err != nil {
				log.Fatalf("failed to insert geofence %s: %v", fence.name, err)
			}
			fmt.Println("Seeded geofence:", fence.name)
		}
	},
}
