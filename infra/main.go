package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/kisanmate-backend/infra/cloudrun"
	"github.com/GregMSThompson/kisanmate-backend/infra/docker"
	"github.com/GregMSThompson/kisanmate-backend/infra/firestore"
	"github.com/GregMSThompson/kisanmate-backend/infra/identity"
	"github.com/GregMSThompson/kisanmate-backend/infra/kms"
	"github.com/GregMSThompson/kisanmate-backend/infra/provider"
	"github.com/GregMSThompson/kisanmate-backend/infra/secret"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// identity platform with phone sign-in
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// firestore database plus the TTL policy on verification sessions
		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx)
		if err != nil {
			return err
		}

		apiSA, err := cloudrun.CreateServiceAccount(ctx, prov)
		if err != nil {
			return err
		}

		// secret manager holds the sms gateway key
		sm, err := secret.SetupSecretManager(ctx, prov, apiSA)
		if err != nil {
			return err
		}

		// kms key for phone numbers in verification sessions
		kmsSvc, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		keyName, err := kms.CreateKey(ctx, prov, "kisanmate", "phone-numbers")
		if err != nil {
			return err
		}
		if err := kms.GrantEncryptDecrypt(ctx, prov, keyName, apiSA); err != nil {
			return err
		}

		err = cloudrun.SetupCloudRun(ctx, prov, apiSA, keyName, ident, db, repo, sm, kmsSvc)
		if err != nil {
			return err
		}

		ctx.Export("kmsKeyName", keyName)
		return nil
	})
}
